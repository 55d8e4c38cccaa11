// Package clientcli provides a client library for the Neocities hosting API.
//
// It supports uploading files and directories, deleting files, wiping a
// site back to its default index page, mirroring a site to a local
// directory, and reading file listings, site info and the API key.
// Requests authenticate with either an API key (bearer) or a
// username/password pair (basic), never both. The package also manages
// profile-based configuration for working with several sites.
//
// # Basic Usage
//
// Create a client and upload a file:
//
//	cfg := &clientcli.Config{APIKey: "your-api-key"}
//
//	client, err := clientcli.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	resp, err := client.UploadFiles(ctx, []clientcli.FileMapping{
//		{LocalPath: "./index.html", RemotePath: "index.html"},
//	})
//
// Credentials left empty in Config fall back to NEOCITIES_API_KEY,
// NEOCITIES_USERNAME and NEOCITIES_PASSWORD.
//
// # Errors
//
// Only the HTTP status decides success. Any non-200 response, transport
// failure or undecodable body is returned as *APIError, which matches
// neocities.ErrAPI:
//
//	if errors.Is(err, clientcli.ErrInvalidAuth) {
//		// wrong key or password
//	}
//
// # Profile Configuration
//
// Use profiles to manage several sites:
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("blog")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatList(os.Stdout, resp)
package clientcli
