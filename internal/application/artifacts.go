package application

import (
	"encoding/json"
	"fmt"
	"strings"

	"tournamentbot/internal/domain/entities"
)

func participantIDs(ps []entities.Participant) []string {
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.UserID
	}
	return ids
}

// participantsFile lists one participant per line.
func participantsFile(ps []entities.Participant) entities.Artifact {
	var b strings.Builder
	for i, p := range ps {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p.Label())
	}
	return entities.Artifact{Name: "participants.txt", Content: []byte(b.String())}
}

// failuresFile lists "id (name): error" per failed member.
func failuresFile(name string, failures []entities.Failure) entities.Artifact {
	var b strings.Builder
	for _, f := range failures {
		fmt.Fprintf(&b, "%s (%s): %v\n", f.Participant.UserID, f.Participant.DisplayName, f.Err)
	}
	return entities.Artifact{Name: name, Content: []byte(b.String())}
}

type inscription struct {
	ID  string `json:"id"`
	Tag string `json:"tag"`
}

// inscriptionsFile is the JSON dump of the registrants sent before validation.
func inscriptionsFile(ps []entities.Participant) (entities.Artifact, error) {
	rows := make([]inscription, len(ps))
	for i, p := range ps {
		rows[i] = inscription{ID: p.UserID, Tag: p.DisplayName}
	}
	content, err := json.Marshal(rows)
	if err != nil {
		return entities.Artifact{}, err
	}
	return entities.Artifact{Name: "inscriptions.json", Content: content}, nil
}
