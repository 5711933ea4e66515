package gbif_test

import (
	"encoding/json"
	"testing"

	"github.com/gnames/gnoccur/pkg/gbif"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDownloadRequest(t *testing.T) {
	req := gbif.NewDownloadRequest(
		"jdoe", "jdoe@example.org",
		[]int{2498252, 5218786},
		[]string{"NL", "BE"},
		1000,
		[]string{"HUMAN_OBSERVATION"},
	)

	assert.Equal(t, "jdoe", req.Creator)
	assert.Equal(t, []string{"jdoe@example.org"}, req.NotificationAddresses)
	assert.True(t, req.SendNotification)
	assert.Equal(t, "DWCA", req.Format)

	root := req.Predicate
	assert.Equal(t, "and", root.Type)
	require.Len(t, root.Predicates, 6)

	taxa := root.Predicates[0]
	assert.Equal(t, "or", taxa.Type)
	require.Len(t, taxa.Predicates, 2)
	assert.Equal(t, "TAXON_KEY", taxa.Predicates[0].Key)

	assert.Equal(t, "COUNTRY", root.Predicates[1].Key)
	assert.Equal(t, []string{"NL", "BE"}, root.Predicates[1].Values)
	assert.Equal(t, "HAS_COORDINATE", root.Predicates[2].Key)
	assert.Equal(t, "HAS_GEOSPATIAL_ISSUE", root.Predicates[3].Key)
	assert.Equal(t,
		"COORDINATE_UNCERTAINTY_IN_METERS", root.Predicates[4].Key)
	assert.Equal(t, "1000", root.Predicates[4].Value)
	assert.Equal(t, "BASIS_OF_RECORD", root.Predicates[5].Key)
}

// TestNewDownloadRequestDeterministic verifies identical documents
// regardless of taxon-key order and duplication.
func TestNewDownloadRequestDeterministic(t *testing.T) {
	req1 := gbif.NewDownloadRequest(
		"u", "e", []int{30, 10, 20, 10}, nil, 500, nil,
	)
	req2 := gbif.NewDownloadRequest(
		"u", "e", []int{10, 20, 30}, nil, 500, nil,
	)

	doc1, err := json.Marshal(req1)
	require.NoError(t, err)
	doc2, err := json.Marshal(req2)
	require.NoError(t, err)
	assert.Equal(t, doc1, doc2)

	taxa := req1.Predicate.Predicates[0].Predicates
	require.Len(t, taxa, 3)
	assert.Equal(t, 10, taxa[0].Value)
	assert.Equal(t, 30, taxa[2].Value)
}

func TestJobStatus(t *testing.T) {
	tests := []struct {
		status        gbif.JobStatus
		terminal, bad bool
	}{
		{gbif.StatusPreparing, false, false},
		{gbif.StatusRunning, false, false},
		{gbif.StatusSucceeded, true, false},
		{gbif.StatusFailed, true, true},
		{gbif.StatusKilled, true, true},
		{gbif.StatusCancelled, true, true},
	}

	for _, v := range tests {
		assert.Equal(t, v.terminal, v.status.Terminal(), string(v.status))
		assert.Equal(t, v.bad, v.status.Bad(), string(v.status))
	}
}

func TestURLs(t *testing.T) {
	api := "https://api.gbif.org/v1"

	assert.Equal(t,
		"https://api.gbif.org/v1/occurrence/download/request",
		gbif.SubmitURL(api),
	)
	assert.Equal(t,
		"https://api.gbif.org/v1/occurrence/download/0001-abc",
		gbif.StatusURL(api, "0001-abc"),
	)
	assert.Equal(t,
		"https://api.gbif.org/v1/occurrence/download/request/0001-abc.zip",
		gbif.ArchiveURL(api, "0001-abc"),
	)
}
