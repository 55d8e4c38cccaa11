// Package neocities holds the shared domain of the Neocities toolkit: the
// upload extension allow-list, API wire types, sentinel errors, the default
// index.html template, and the SiteService that backs the local dev server.
//
// # Key Components
//
//   - IsValidExtension: The fixed allow-list of file types a site may host
//   - Response: A decoded API response keeping both typed fields and the raw payload
//   - SiteService: Site accounts plus per-site file storage for the dev server
//   - SiteRepo: Interface for site account persistence (SQLite)
//   - FileStorage: Interface for file operations (filesystem)
//
// The API client lives in package clientcli; the dev server HTTP surface in
// package http.
//
// # Example Usage
//
//	if !neocities.IsValidExtension("notes.exe") {
//	    // skipped by clients, rejected by servers
//	}
//
//	service := neocities.NewSiteService(repo, storage, neocities.ServiceConfig{})
//	site, err := service.CreateSite(ctx, neocities.NewSite{Sitename: "demo", Password: "secret"})
package neocities
