// Package http serves a Neocities-compatible hosting API for local
// development.
//
// # Routes
//
//	POST /api/upload   multipart; every field name is the destination path
//	POST /api/delete   form field filenames[]
//	GET  /api/list     optional ?path= directory filter
//	GET  /api/info     public with ?sitename=, otherwise the caller's site
//	GET  /api/key      the caller's API key, generated on first request
//	GET  /site/{sitename}/*  the public files of a site
//
// Every /api response is a JSON body with "result" set to "success" or
// "error". Errors carry "error_type" and "message". Unknown API routes
// answer 404 not_found.
//
// # Authentication
//
// AuthMiddleware accepts either an "Authorization: Bearer <api key>" header
// or HTTP basic auth with the sitename and password. Anything else answers
// 403 invalid_auth. The authenticated site is available to handlers through
// SiteFromContext.
//
// # Usage
//
//	handler := http.NewHandler(&http.HandlerConfig{}, service)
//	srv := &nethttp.Server{Addr: ":5709", Handler: handler.Router()}
//
// The service is usually a *neocities.SiteService.
package http
