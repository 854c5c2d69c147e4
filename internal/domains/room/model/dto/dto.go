package dto

import (
	"classbook/internal/domains/room/model"
	"classbook/shared"
	gDto "classbook/shared/dto"
	gModel "classbook/shared/model"
	"classbook/shared/timezone"

	"github.com/google/uuid"
)

type CreateRoomRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Location string `json:"location" validate:"omitempty,max=100"`
	Capacity int    `json:"capacity" validate:"omitempty,min=0"`
	Active   *bool  `json:"active"   validate:"omitempty"`
}

func (c *CreateRoomRequest) ToModel(user string) model.Room {
	active := true
	if c.Active != nil {
		active = *c.Active
	}

	return model.Room{
		ID:       uuid.NewString(),
		Name:     c.Name,
		Location: c.Location,
		Capacity: c.Capacity,
		Active:   active,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateRoomRequest struct {
	Name     string `db:"name"     json:"name"     validate:"omitempty,max=100"`
	Location string `db:"location" json:"location" validate:"omitempty,max=100"`
	Capacity *int   `db:"capacity" json:"capacity" validate:"omitempty,min=0"`
	Active   *bool  `db:"active"   json:"active"   validate:"omitempty"`
}

type RoomResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
	Active   bool   `json:"active"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Name = model.Name
	r.Location = model.Location
	r.Capacity = model.Capacity
	r.Active = model.Active
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
