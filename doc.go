// Package relay implements an upload/download relay for the HTTP upload
// extension of an external messaging server.
//
// The messaging server hands its clients a PUT URL carrying an HMAC token in
// the "v" query parameter. The relay recomputes that token from the requested
// logical filename and the declared Content-Length, stores the body under a
// content-addressed key, and later serves the stored bytes to anyone who knows
// the URL.
//
// # Key Components
//
//   - Signer: computes and verifies upload tokens (HMAC-SHA256 over "<name> <size>")
//   - StorageKey: maps a logical filename to "store-" + hex(sha256(name))
//   - FileStorage: interface for the flat key/value file store (see package filesystem)
//   - RelayService: upload, download and maintenance on top of FileStorage
//
// # Example Usage
//
//	signer := relay.NewSigner("this is your secret string")
//	service, err := relay.NewRelayService(storage, signer, relay.ServiceConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store an upload authorized by the messaging server
//	info, err := service.Upload(ctx, relay.UploadRequest{Name: name, Size: size, Token: v}, body)
//
//	// Serve it back
//	info, content, err := service.Download(ctx, name)
//
// See the http package for the HTTP surface and the filesystem package for the
// storage backend.
package relay
