// Package gbif provides the pure parts of the GBIF occurrence download
// protocol: the predicate document submitted to the download API and
// the job-status state machine observed while polling.
//
// The package performs no I/O; internal/iodownload drives the actual
// HTTP exchange.
package gbif

import (
	"fmt"
	"slices"
)

// DownloadRequest is the document submitted to the occurrence download
// API. Field names follow the wire format of the service.
type DownloadRequest struct {
	Creator               string    `json:"creator"`
	NotificationAddresses []string  `json:"notificationAddresses"`
	SendNotification      bool      `json:"sendNotification"`
	Format                string    `json:"format"`
	Predicate             Predicate `json:"predicate"`
}

// Predicate is one node of the request's filter tree. Leaf nodes carry
// Key and Value/Values; "and"/"or" nodes carry child Predicates.
type Predicate struct {
	Type       string      `json:"type"`
	Key        string      `json:"key,omitempty"`
	Value      any         `json:"value,omitempty"`
	Values     []string    `json:"values,omitempty"`
	Predicates []Predicate `json:"predicates,omitempty"`
}

// NewDownloadRequest builds the standard download request: all taxon
// keys OR-combined, then AND-ed with country membership, coordinate
// presence, absence of geospatial issues, the uncertainty threshold,
// and the allowed basis-of-record set.
//
// Taxon keys are deduplicated and sorted so that the same inputs always
// produce the same document; the predicate order is fixed. The service
// does not care about either, reproducible logs do.
func NewDownloadRequest(
	user, email string,
	taxonKeys []int,
	countries []string,
	maxUncertaintyMeters float64,
	allowedBasis []string,
) DownloadRequest {
	keys := slices.Clone(taxonKeys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	taxa := make([]Predicate, len(keys))
	for i, k := range keys {
		taxa[i] = Predicate{Type: "equals", Key: "TAXON_KEY", Value: k}
	}

	root := Predicate{
		Type: "and",
		Predicates: []Predicate{
			{Type: "or", Predicates: taxa},
			{Type: "in", Key: "COUNTRY", Values: countries},
			{Type: "equals", Key: "HAS_COORDINATE", Value: "TRUE"},
			{Type: "equals", Key: "HAS_GEOSPATIAL_ISSUE", Value: "FALSE"},
			{
				Type:  "lessThan",
				Key:   "COORDINATE_UNCERTAINTY_IN_METERS",
				Value: fmt.Sprintf("%.0f", maxUncertaintyMeters),
			},
			{Type: "in", Key: "BASIS_OF_RECORD", Values: allowedBasis},
		},
	}

	return DownloadRequest{
		Creator:               user,
		NotificationAddresses: []string{email},
		SendNotification:      true,
		Format:                "DWCA",
		Predicate:             root,
	}
}

// StatusRateLimited is the HTTP status the download API answers with
// when an account has too many queued requests.
const StatusRateLimited = 420

// JobStatus is the state of a download job as reported by the service.
type JobStatus string

const (
	StatusPreparing JobStatus = "PREPARING"
	StatusRunning   JobStatus = "RUNNING"
	StatusSucceeded JobStatus = "SUCCEEDED"
	StatusFailed    JobStatus = "FAILED"
	StatusKilled    JobStatus = "KILLED"
	StatusCancelled JobStatus = "CANCELLED"
)

// Terminal reports whether the job reached a final state.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusKilled, StatusCancelled:
		return true
	}
	return false
}

// Bad reports whether a terminal state means the job did not produce
// an archive.
func (s JobStatus) Bad() bool {
	return s.Terminal() && s != StatusSucceeded
}

// SubmitURL returns the endpoint for submitting a download request.
func SubmitURL(apiURL string) string {
	return apiURL + "/occurrence/download/request"
}

// StatusURL returns the endpoint for checking a download job.
func StatusURL(apiURL, key string) string {
	return fmt.Sprintf("%s/occurrence/download/%s", apiURL, key)
}

// ArchiveURL returns the location of the finished archive.
func ArchiveURL(apiURL, key string) string {
	return fmt.Sprintf("%s/occurrence/download/request/%s.zip", apiURL, key)
}
