package studio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseProposalSanitizesMetadata(t *testing.T) {
	payload := `{"id":"p-9","title":"  Fix typo data:image/png;base64,QUJD in docs  ","author":"ana\u0007","diff":"--- a/x\n"}`

	proposal, err := ParseProposal(payload)
	require.NoError(t, err)
	require.Equal(t, "p-9", proposal.ID)
	require.Equal(t, "Fix typo [media removed] in docs", proposal.Title)
	require.Equal(t, "ana", proposal.Author)
	require.Equal(t, "--- a/x\n", proposal.Diff)
}

func TestParseProposalEmptyPayload(t *testing.T) {
	_, err := ParseProposal("   \n")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{"proposal payload is empty"}, verr.Issues)
}

func TestParseProposalMissingDiff(t *testing.T) {
	_, err := ParseProposal(`{"id":"p-1","title":"no diff"}`)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Error(), "diff")
}

func TestParseProposalRejectsUnknownFields(t *testing.T) {
	_, err := ParseProposal(`{"id":"p-1","diff":"--- a/x\n","reviewers":[]}`)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.NotEmpty(t, verr.Issues)
}

func TestParseProposalMalformedJSON(t *testing.T) {
	_, err := ParseProposal(`{"id":`)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Issues[0], "not valid JSON")
}
