// Package services implements clients for the external APIs the report
// pipeline depends on.
//
// [StravaService] fetches activities from the Strava v3 API with OAuth2
// token refresh, request rate limiting, and an optional per-run request
// cap. [ITunesService] resolves album names to artists through the iTunes
// Search API. Both satisfy small interfaces ([ActivityProvider],
// [ArtistLookup]) so the pipeline and its tests never depend on concrete
// HTTP clients.
package services
