package model

import "classbook/shared/model"

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID       = "id"
	FieldName     = "name"
	FieldLocation = "location"
	FieldCapacity = "capacity"
	FieldActive   = "active"
)

type Room struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Location string `db:"location"`
	Capacity int    `db:"capacity"`
	Active   bool   `db:"active"`
	model.Metadata
}
