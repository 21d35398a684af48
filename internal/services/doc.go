// Package services holds the operations the dashboard pages and the CLI
// share: signing in and out, patient management, predictions and reports.
//
// Services never cache backend data; every call goes to the API. Errors from
// the API are returned as-is so callers can render them with client.Message.
package services
