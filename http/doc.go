// Package http serves the relay over HTTP.
//
// A single base path (default "/upload/") is mounted on a chi router. The
// rest of the request path, URL-decoded, is the file name:
//
//	OPTIONS /upload/<name>        200, CORS headers only
//	HEAD    /upload/<name>        200 with file headers, or 404
//	GET     /upload/<name>        200 with file headers and body, or 404
//	PUT     /upload/<name>?v=<t>  200, 403 bad token, 409 exists, 507 write failed
//
// A PUT without the v parameter, or any other method, answers 400. Error
// responses carry a status code and no body.
//
// Downloads are sent with Content-Disposition: attachment and
// X-Content-Type-Options: nosniff, using the content type detected from the
// stored bytes. The body is streamed in ChunkSize pieces with a flush after
// each one and no write deadline.
//
// # Usage
//
//	handler := http.NewHandler(&http.HandlerConfig{
//	    BasePath:  "/upload/",
//	    ChunkSize: 8192,
//	}, service)
//	server := &nethttp.Server{Addr: ":5050", Handler: handler.Router()}
//
// The service parameter must implement the Service interface with Upload and
// Download methods; *relay.RelayService does.
//
// # CORS
//
// By default every OPTIONS, HEAD, GET and tokened PUT response carries
// Access-Control-Allow-Origin: *. Setting CORSConfig.AllowedOrigins to concrete
// origins switches to origin checking through go-chi/cors.
package http
