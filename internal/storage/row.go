package storage

import (
	"time"

	"github.com/onegateway/site-notify/internal/domain"
)

// row is the flat column layout shared by the tabular backends.
type row struct {
	ID         string    `json:"id" dynamodbav:"id"`
	Name       string    `json:"name" dynamodbav:"name"`
	Email      string    `json:"email" dynamodbav:"email"`
	Phone      string    `json:"phone" dynamodbav:"phone"`
	Company    *string   `json:"company" dynamodbav:"company,omitempty"`
	Message    *string   `json:"message" dynamodbav:"message,omitempty"`
	DeviceType string    `json:"device_type" dynamodbav:"device_type"`
	UserAgent  *string   `json:"user_agent" dynamodbav:"user_agent,omitempty"`
	IPAddress  *string   `json:"ip_address" dynamodbav:"ip_address,omitempty"`
	Region     *string   `json:"region" dynamodbav:"region,omitempty"`
	City       *string   `json:"city" dynamodbav:"city,omitempty"`
	Country    string    `json:"country" dynamodbav:"country"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
}

func toRow(rec domain.EnrichedRecord) row {
	return row{
		ID:         rec.ID,
		Name:       rec.Name,
		Email:      rec.Email,
		Phone:      rec.Phone,
		Company:    domain.StringPtr(rec.Company),
		Message:    domain.StringPtr(rec.Message),
		DeviceType: string(rec.DeviceType),
		UserAgent:  rec.UserAgent,
		IPAddress:  rec.IPAddress,
		Region:     rec.Region,
		City:       rec.City,
		Country:    rec.Country,
		CreatedAt:  rec.CreatedAt.UTC(),
	}
}

// args returns the row in insertColumns order.
func (r row) args() []any {
	return []any{
		r.ID, r.Name, r.Email, r.Phone, r.Company, r.Message, r.DeviceType,
		r.UserAgent, r.IPAddress, r.Region, r.City, r.Country, r.CreatedAt,
	}
}

const insertColumns = "id, name, email, phone, company, message, device_type, user_agent, ip_address, region, city, country, created_at"
