package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Photo is one image inside a PhotoSet. The binary lives in object storage;
// only the key and metadata are stored here.
type Photo struct {
	ObjectKey   string `bson:"objectKey" json:"-"`
	FileName    string `bson:"fileName" json:"fileName"`
	ContentType string `bson:"contentType" json:"contentType"`
	Size        int64  `bson:"size" json:"size"`
}

// PhotoSet is one batch of progress photos for an ISO week.
// At most one set per user per week (unique userId+week index, checked
// before any storage write).
type PhotoSet struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	Week       string             `bson:"week" json:"week"`
	Photos     []Photo            `bson:"photos" json:"photos"`
	CoverIndex int                `bson:"coverIndex" json:"coverIndex"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
