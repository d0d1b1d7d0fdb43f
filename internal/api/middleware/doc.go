/*
Package middleware holds the gin middlewares in front of the desktop API:
CORS, per-IP rate limiting and bearer token authentication.

Auth stores the caller under ContextUserID and ContextIdentity; handlers
read them through UserID and Identity.
*/
package middleware
