package surfboard

import (
	"bufio"
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/agentstation/surfpub/pkg/errors"
	"github.com/agentstation/surfpub/pkg/logging"
)

// ReleaseNotesFile is the file name release notes are read from.
const ReleaseNotesFile = "_release_notes.yaml"

var (
	issuePattern   = regexp.MustCompile(`[A-Z]{2,}-[0-9]{4,}`)
	versionPattern = regexp.MustCompile(`\.[0-9]{0,3}-`)
)

// Ticket is an issue referenced by a release.
type Ticket struct {
	Key     string
	URL     string
	Summary string
}

// Release groups the tickets listed under one version line.
type Release struct {
	// Version is the raw version line. It is empty for tickets listed before
	// the first version line.
	Version string
	Tickets []Ticket
}

// ReleaseNotes are the parsed release notes of one service chart.
type ReleaseNotes struct {
	Service  string
	Releases []Release
}

// parseReleaseNotes reads release notes line by line.
//
// A line matching a version stamp starts a new release unless it mentions
// JENKINS, in which case it is ignored. Any other line contributes its first
// issue key, once per release. Summaries are looked up with summaries when it
// is non-nil; a failed lookup leaves the summary empty.
func parseReleaseNotes(ctx context.Context, r io.Reader, service, jiraURL string, summaries SummaryFetcher) (*ReleaseNotes, error) {
	logger := logging.FromContext(ctx)
	notes := &ReleaseNotes{Service: service}
	browse := strings.TrimSuffix(jiraURL, "/") + "/browse/"

	current := -1
	seen := map[string]bool{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		if versionPattern.MatchString(line) {
			if strings.Contains(line, "JENKINS") {
				continue
			}
			notes.Releases = append(notes.Releases, Release{Version: strings.TrimSpace(line)})
			current = len(notes.Releases) - 1
			seen = map[string]bool{}
			continue
		}

		key := issuePattern.FindString(line)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		if current < 0 {
			notes.Releases = append(notes.Releases, Release{})
			current = 0
		}

		ticket := Ticket{Key: key, URL: browse + key}
		if summaries != nil {
			summary, err := summaries.Summary(ctx, key)
			if err != nil {
				logger.Warn().Err(err).Str("ticket", key).Msg("Could not fetch ticket summary")
			} else {
				ticket.Summary = summary
			}
		}
		notes.Releases[current].Tickets = append(notes.Releases[current].Tickets, ticket)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapIO("read", service+"/"+ReleaseNotesFile, err)
	}
	return notes, nil
}
