package dto

import (
	"time"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/db"
)

// RequestPostEvent keeps the PascalCase form names the mobile client posts.
type RequestPostEvent struct {
	EventTitle    string `form:"EventTitle" binding:"required,max=100"`
	EventType     string `form:"EventType"`
	EventCategory string `form:"EventCategory" binding:"required,max=50"`
	Location      string `form:"Location" binding:"required,max=255"`
	Price         string `form:"Price"`
	EventDetails  string `form:"EventDetails" binding:"required"`
}

type RequestPutEvent struct {
	EventTitle    string   `json:"EventTitle" binding:"required,max=100"`
	EventType     *int     `json:"EventType" binding:"required"`
	EventCategory string   `json:"EventCategory" binding:"required,max=50"`
	Location      string   `json:"Location" binding:"required,max=255"`
	Price         *float64 `json:"Price"`
	EventDetails  string   `json:"EventDetails" binding:"required"`
	Photos        *string  `json:"Photos"`
}

type PostEventResponse struct {
	Message string   `json:"message"`
	EventID uint     `json:"event_id"`
	Paths   []string `json:"paths"`
}

type CardRow struct {
	ID         uint          `gorm:"column:id"`
	CreatorID  uint          `gorm:"column:creator_id"`
	Title      string        `gorm:"column:title"`
	Photos     db.StringList `gorm:"column:photos;type:text"`
	Address    string        `gorm:"column:address"`
	Demand     string        `gorm:"column:demand"`
	Price      float64       `gorm:"column:price"`
	Name       string        `gorm:"column:name"`
	Avatar     string        `gorm:"column:avatar"`
	EventType  int           `gorm:"column:event_type"`
	CreateTime time.Time     `gorm:"column:create_time"`
}

type CardResponse struct {
	ID         uint                `json:"id"`
	CreatorID  uint                `json:"creator_id"`
	Title      string              `json:"title"`
	CardImage  *string             `json:"card_image"`
	Address    string              `json:"address"`
	Demand     string              `json:"demand"`
	Price      float64             `json:"price"`
	Name       string              `json:"name"`
	Avatar     string              `json:"avatar"`
	EventType  constants.EventType `json:"event_type"`
	CreateTime time.Time           `json:"create_time"`
}

type CreatorSummary struct {
	ID         uint   `json:"id"`
	UserName   string `json:"user_name"`
	UserAvatar string `json:"user_avatar"`
}

type EventDetailResponse struct {
	db.Event
	Creator CreatorSummary `json:"creator"`
}
