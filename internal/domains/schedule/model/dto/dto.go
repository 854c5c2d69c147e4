package dto

import (
	"classbook/internal/domains/schedule/model"
	"classbook/shared"
	gDto "classbook/shared/dto"
	"classbook/shared/timeslot"
)

type ScheduleResponse struct {
	ID            string `json:"id"`
	RequestID     string `json:"request_id"`
	RoomID        string `json:"room_id"`
	RequesterID   string `json:"requester_id"`
	RequesterName string `json:"requester_name"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Purpose       string `json:"purpose"`
	Status        string `json:"status"`
	CancelReason  string `json:"cancel_reason,omitempty"`
	gDto.Metadata
}

func (r *ScheduleResponse) FromModel(mod model.ScheduleEntry) {
	r.ID = mod.ID
	r.RequestID = mod.RequestID
	r.RoomID = mod.RoomID
	r.RequesterID = mod.RequesterID
	r.RequesterName = mod.RequesterName
	r.Date = timeslot.FormatDate(mod.Date)
	r.StartTime = timeslot.FormatClock(mod.StartTime)
	r.EndTime = timeslot.FormatClock(mod.EndTime)
	r.Purpose = mod.Purpose
	r.Status = mod.Status

	if mod.CancelReason != nil {
		r.CancelReason = *mod.CancelReason
	}

	r.Metadata.FromModel(mod.Metadata)
}

type GetSchedulesResponse struct {
	Schedules []ScheduleResponse `json:"schedules"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetSchedulesResponse) FromModels(models []model.ScheduleEntry, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Schedules = make([]ScheduleResponse, len(models))
	for i, mod := range models {
		r.Schedules[i].FromModel(mod)
	}
}
