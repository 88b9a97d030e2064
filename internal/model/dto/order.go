package dto

import (
	"time"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
)

type RequestCreateOrder struct {
	EventID     uint       `json:"event_id" binding:"required"`
	Note        string     `json:"note" binding:"max=500"`
	ServiceTime *time.Time `json:"service_time"`
}

type RequestUpdateOrder struct {
	Price       *float64   `json:"price" binding:"omitempty,gte=0"`
	Note        *string    `json:"note" binding:"omitempty,max=500"`
	ServiceTime *time.Time `json:"service_time"`
}

type OrderResponse struct {
	ID           uint                  `gorm:"column:id" json:"id"`
	EventID      uint                  `gorm:"column:event_id" json:"event_id"`
	EventTitle   string                `gorm:"column:event_title" json:"event_title"`
	EventType    constants.EventType   `gorm:"column:event_type" json:"event_type"`
	ConsumerID   uint                  `gorm:"column:consumer_id" json:"consumer_id"`
	ConsumerName string                `gorm:"column:consumer_name" json:"consumer_name"`
	ProviderID   *uint                 `gorm:"column:provider_id" json:"provider_id"`
	ProviderName *string               `gorm:"column:provider_name" json:"provider_name"`
	Status       constants.OrderStatus `gorm:"column:status" json:"status"`
	Price        float64               `gorm:"column:price" json:"price"`
	Note         string                `gorm:"column:note" json:"note"`
	ServiceTime  *time.Time            `gorm:"column:service_time" json:"service_time"`
	CreateTime   time.Time             `gorm:"column:create_time" json:"create_time"`
	UpdateTime   time.Time             `gorm:"column:update_time" json:"update_time"`
	FinishTime   *time.Time            `gorm:"column:finish_time" json:"finish_time"`
}

type RequestCreateReview struct {
	OrderID uint   `json:"order_id" binding:"required"`
	Score   int    `json:"score" binding:"required,min=1,max=5"`
	Text    string `json:"text" binding:"max=500"`
}
