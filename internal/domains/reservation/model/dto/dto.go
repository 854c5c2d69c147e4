package dto

import (
	"classbook/internal/domains/reservation/model"
	"classbook/shared"
	gDto "classbook/shared/dto"
	gModel "classbook/shared/model"
	"classbook/shared/timeslot"
	"classbook/shared/timezone"

	"github.com/google/uuid"
)

type SubmitReservationRequest struct {
	RoomID         string `json:"room_id"         validate:"required"`
	Date           string `json:"date"            validate:"required,dateformat"`
	StartTime      string `json:"start_time"      validate:"required,clockformat"`
	EndTime        string `json:"end_time"        validate:"required,clockformat"`
	Purpose        string `json:"purpose"         validate:"required,max=500"`
	IdempotencyKey string `json:"idempotency_key" validate:"omitempty,max=100"`
}

// Slot parses the wire date/time fields once, in the application timezone.
func (c *SubmitReservationRequest) Slot() (timeslot.Slot, error) {
	return timeslot.Parse(c.Date, c.StartTime, c.EndTime)
}

func (c *SubmitReservationRequest) ToModel(userID, userName string, slot timeslot.Slot) model.ReservationRequest {
	var key *string
	if c.IdempotencyKey != "" {
		k := c.IdempotencyKey
		key = &k
	}

	now := timezone.Now()

	return model.ReservationRequest{
		ID:             uuid.NewString(),
		RequesterID:    userID,
		RequesterName:  userName,
		RoomID:         c.RoomID,
		Date:           slot.Date,
		StartTime:      slot.Start,
		EndTime:        slot.End,
		Purpose:        c.Purpose,
		Status:         model.StatusPending,
		SubmittedAt:    now,
		IdempotencyKey: key,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  userID,
			ModifiedBy: userID,
		},
	}
}

// DecisionRequest carries the optional (approve) or mandatory (reject)
// feedback for a decision on a pending request.
type DecisionRequest struct {
	Feedback string `json:"feedback" validate:"omitempty,max=500"`
}

// CancelRequest carries the mandatory reason for cancelling an approved booking.
type CancelRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type ReservationResponse struct {
	ID            string `json:"id"`
	RequesterID   string `json:"requester_id"`
	RequesterName string `json:"requester_name"`
	RoomID        string `json:"room_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Purpose       string `json:"purpose"`
	Status        string `json:"status"`
	SubmittedAt   string `json:"submitted_at"`
	Feedback      string `json:"feedback,omitempty"`
	DecidedBy     string `json:"decided_by,omitempty"`
	gDto.Metadata
}

func (r *ReservationResponse) FromModel(mod model.ReservationRequest) {
	r.ID = mod.ID
	r.RequesterID = mod.RequesterID
	r.RequesterName = mod.RequesterName
	r.RoomID = mod.RoomID
	r.Date = timeslot.FormatDate(mod.Date)
	r.StartTime = timeslot.FormatClock(mod.StartTime)
	r.EndTime = timeslot.FormatClock(mod.EndTime)
	r.Purpose = mod.Purpose
	r.Status = mod.Status
	r.SubmittedAt = timezone.Format(mod.SubmittedAt, "2006-01-02T15:04:05Z07:00")

	if mod.Feedback != nil {
		r.Feedback = *mod.Feedback
	}

	if mod.DecidedBy != nil {
		r.DecidedBy = *mod.DecidedBy
	}

	r.Metadata.FromModel(mod.Metadata)
}

type GetReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetReservationsResponse) FromModels(models []model.ReservationRequest, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Reservations = make([]ReservationResponse, len(models))
	for i, mod := range models {
		r.Reservations[i].FromModel(mod)
	}
}
