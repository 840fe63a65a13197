// Package timeline reconstructs a candidate's history from attempt
// lifecycle fields.
package timeline

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/okian/talentlens/internal/domain/model"
)

// namespace seeds the name-based ids of timeline events.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://talentlens.dev/timeline"))

// priority breaks timestamp ties: later lifecycle stages sort first.
func priority(t model.TimelineEventType) int {
	switch t {
	case model.EventAssessmentCompleted:
		return 3
	case model.EventAssessmentStarted:
		return 2
	case model.EventInvitationSent:
		return 1
	default:
		return 0
	}
}

// eventID derives a stable id so rebuilding a timeline yields identical output.
func eventID(candidateID, attemptID string, t model.TimelineEventType) string {
	return uuid.NewSHA1(namespace, []byte(candidateID+"/"+attemptID+"/"+string(t))).String()
}

// Build returns the candidate's events sorted newest first. Per attempt it
// emits an invitation when AppliedAt is set, a start when the attempt is in
// progress and a completion when CompletedAt is set. A profile-created event
// at MemberSince is always included.
func Build(candidate model.Candidate, attempts []model.AssessmentAttempt) []model.TimelineEvent {
	events := make([]model.TimelineEvent, 0, 2*len(attempts)+1)

	for i := range attempts {
		a := &attempts[i]
		meta := model.TimelineMetadata{
			AssessmentID:    a.AssessmentID,
			AssessmentTitle: a.AssessmentTitle,
		}

		if !a.AppliedAt.IsZero() {
			events = append(events, model.TimelineEvent{
				ID:          eventID(candidate.ID, a.ID, model.EventInvitationSent),
				Timestamp:   a.AppliedAt,
				Type:        model.EventInvitationSent,
				Title:       "Invitation sent",
				Description: fmt.Sprintf("Invited to %s", a.AssessmentTitle),
				Metadata:    meta,
			})
		}

		if a.Status == model.StatusInProgress {
			events = append(events, model.TimelineEvent{
				ID:          eventID(candidate.ID, a.ID, model.EventAssessmentStarted),
				Timestamp:   a.AppliedAt,
				Type:        model.EventAssessmentStarted,
				Title:       "Assessment started",
				Description: fmt.Sprintf("Started %s", a.AssessmentTitle),
				Metadata:    meta,
			})
		}

		if a.CompletedAt != nil {
			done := meta
			if a.Score != nil {
				v := *a.Score
				done.Score = &v
			}
			events = append(events, model.TimelineEvent{
				ID:          eventID(candidate.ID, a.ID, model.EventAssessmentCompleted),
				Timestamp:   *a.CompletedAt,
				Type:        model.EventAssessmentCompleted,
				Title:       "Assessment completed",
				Description: completionText(a),
				Metadata:    done,
			})
		}
	}

	events = append(events, model.TimelineEvent{
		ID:          eventID(candidate.ID, "", model.EventProfileCreated),
		Timestamp:   candidate.MemberSince,
		Type:        model.EventProfileCreated,
		Title:       "Profile created",
		Description: fmt.Sprintf("%s joined the platform", displayName(candidate)),
	})

	Sort(events)
	return events
}

// Sort orders events newest first. Equal timestamps are ordered by lifecycle
// stage (completed, started, invited, profile created) and then assessment id.
func Sort(events []model.TimelineEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		if pa, pb := priority(a.Type), priority(b.Type); pa != pb {
			return pa > pb
		}
		return a.Metadata.AssessmentID < b.Metadata.AssessmentID
	})
}

func completionText(a *model.AssessmentAttempt) string {
	if a.Score == nil {
		return fmt.Sprintf("Finished %s", a.AssessmentTitle)
	}
	return fmt.Sprintf("Finished %s with a score of %.0f%%", a.AssessmentTitle, *a.Score)
}

func displayName(c model.Candidate) string {
	if c.Name != "" {
		return c.Name
	}
	return "Candidate"
}
