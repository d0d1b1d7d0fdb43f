/*
Package http implements the desktop REST API on gin.

Per-user routes resolve the caller through the auth middleware and operate
on that user's desktop from the desktop manager. Window operations reply
with the rendered desktop so the frontend can repaint from one response.
Blob storage routes front the blob provider; a signed download link is the
only unauthenticated file route.
*/
package http
