// Package clientcli is a client library for a relay.
//
// Uploads are signed locally with the shared secret, so the client can stand
// in for the server that normally hands out upload URLs. Downloads and HEAD
// requests need no credentials. Profiles keep endpoints and secrets for
// several relays in one YAML file.
//
// # Basic Usage
//
//	client, err := clientcli.New(&clientcli.Config{
//		Endpoint: "http://localhost:5050/upload/",
//		Secret:   "your-secret",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPath:  "./report.pdf",
//		RemotePath: "uuid-1/report.pdf",
//	})
//
// # Profiles
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetDefaultProfile()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUpload(os.Stdout, results)
package clientcli
