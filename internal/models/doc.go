// Package models holds the JSON shapes exchanged with the backend API.
// Field names follow the backend schema exactly.
package models
