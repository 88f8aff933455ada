package mongo_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/zerowaste/payment-service/internal/domain"
	"github.com/zerowaste/payment-service/internal/platform/mongo"
)

func TestBuildFilter_Empty(t *testing.T) {
	assert.Equal(t, bson.M{}, mongo.BuildFilter(domain.PaymentFilter{}))
}

func TestBuildFilter_All(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	got := mongo.BuildFilter(domain.PaymentFilter{
		UserID:      "u1",
		Status:      domain.StatusApproved,
		CreatedFrom: &from,
		CreatedTo:   &to,
	})

	assert.Equal(t, bson.M{
		"userId":    "u1",
		"status":    domain.StatusApproved,
		"createdAt": bson.M{"$gte": from, "$lte": to},
	}, got)
}

func TestBuildFilter_OpenRange(t *testing.T) {
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	got := mongo.BuildFilter(domain.PaymentFilter{CreatedTo: &to})

	assert.Equal(t, bson.M{"createdAt": bson.M{"$lte": to}}, got)
}
