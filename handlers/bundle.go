package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Booking lifecycle endpoints.
	CreateBookingRequest gin.HandlerFunc
	GetBooking           gin.HandlerFunc
	AcceptBooking        gin.HandlerFunc
	RejectBooking        gin.HandlerFunc
	ScheduleBooking      gin.HandlerFunc
	StartBooking         gin.HandlerFunc
	CompleteBooking      gin.HandlerFunc
	CancelBooking        gin.HandlerFunc
	RaiseDispute         gin.HandlerFunc

	// AI pipeline endpoints.
	MatchProviders     gin.HandlerFunc
	SuggestSlots       gin.HandlerFunc
	RecommendPrice     gin.HandlerFunc
	RecommendProviders gin.HandlerFunc

	// Review endpoints.
	CreateReview gin.HandlerFunc
	GetReview    gin.HandlerFunc

	// Provider endpoints.
	CreateProvider    gin.HandlerFunc
	GetProvider       gin.HandlerFunc
	GetSlots          gin.HandlerFunc
	SetWeeklySchedule gin.HandlerFunc
	GetWeeklySchedule gin.HandlerFunc
	AddTimeOff        gin.HandlerFunc
	DeleteTimeOff     gin.HandlerFunc
}
