package dto

import (
	"time"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/db"
)

type AdminLoginRequest struct {
	UserName string `json:"user_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type StaffSummary struct {
	ID       uint               `json:"id"`
	UserName string             `json:"user_name"`
	Role     constants.UserRole `json:"role"`
}

type AdminLoginResponse struct {
	Message string       `json:"message"`
	Staff   StaffSummary `json:"staff"`
	Token   string       `json:"token"`
}

type AdminUserRow struct {
	ID             uint      `gorm:"column:id" json:"id"`
	UserName       string    `gorm:"column:user_name" json:"user_name"`
	RealName       string    `gorm:"column:real_name" json:"real_name"`
	PhoneNumber    string    `gorm:"column:phone_number" json:"phone_number"`
	UserAvatar     string    `gorm:"column:user_avatar" json:"user_avatar"`
	Location       string    `gorm:"column:location" json:"location"`
	CreateTime     time.Time `gorm:"column:create_time" json:"create_time"`
	BuyerRanking   *float64  `gorm:"column:buyer_ranking" json:"buyer_ranking"`
	ServiceRanking *float64  `gorm:"column:service_ranking" json:"service_ranking"`
	OrderCount     *int      `gorm:"column:order_count" json:"order_count"`
	IsProvider     bool      `gorm:"column:is_provider" json:"is_provider"`
}

// Admin verification review.

type AdminProviderRow struct {
	ProviderID         uint                          `gorm:"column:provider_id" json:"provider_id"`
	ProviderRole       constants.ServiceCategory     `gorm:"column:provider_role" json:"provider_role"`
	UserName           string                        `gorm:"column:user_name" json:"user_name"`
	RealName           string                        `gorm:"column:real_name" json:"real_name"`
	VerificationStatus *constants.VerificationStatus `gorm:"column:verification_status" json:"verification_status"`
	IsVerified         bool                          `gorm:"column:is_verified" json:"is_verified"`
}

type VerificationDetailResponse struct {
	Verification db.Verification  `json:"verification"`
	User         *ProfileResponse `json:"user"`
}

// RequestReviewVerification keeps the providerId key used by the admin console.
type RequestReviewVerification struct {
	ProviderID uint   `json:"providerId" binding:"required"`
	Results    string `json:"results" binding:"max=500"`
}

type RequestSubmitVerification struct {
	ServiceCategory string `form:"ServiceCategory"`
	RealName        string `form:"RealName"`
	IDCardNumber    string `form:"IdCardNumber"`
	Location        string `form:"Location"`
	Introduction    string `form:"Introduction"`
}

type SubmitVerificationResponse struct {
	Message            string                       `json:"message"`
	VerificationID     uint                         `json:"verification_id"`
	VerificationStatus constants.VerificationStatus `json:"verification_status"`
	IDCardPaths        []string                     `json:"id_card_paths"`
	CertPaths          []string                     `json:"cert_paths"`
}
