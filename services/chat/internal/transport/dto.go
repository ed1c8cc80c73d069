package transport

import "github.com/google/uuid"

type CreateChatRequest struct {
	Kind           string      `json:"kind"`
	RefID          *uuid.UUID  `json:"ref_id,omitempty"`
	Title          string      `json:"title"`
	ParticipantIDs []uuid.UUID `json:"participant_ids"`
}

type SendMessageRequest struct {
	Body string `json:"body"`
}
