package social

import (
	"fmt"

	"github.com/adrena/backend/internal/models"
	"github.com/google/uuid"
)

type notificationText struct {
	kind    string
	title   models.Localized
	message models.Localized
}

var (
	newFollowerText = notificationText{
		kind:    models.NotificationNewFollower,
		title:   models.Localized{AR: "متابع جديد", EN: "New follower"},
		message: models.Localized{AR: "بدأ %s بمتابعتك", EN: "%s started following you"},
	}
	followRequestText = notificationText{
		kind:    models.NotificationFollowRequest,
		title:   models.Localized{AR: "طلب متابعة", EN: "Follow request"},
		message: models.Localized{AR: "يرغب %s في متابعتك", EN: "%s wants to follow you"},
	}
	friendRequestText = notificationText{
		kind:    models.NotificationFriendRequest,
		title:   models.Localized{AR: "طلب صداقة", EN: "Friend request"},
		message: models.Localized{AR: "أرسل لك %s طلب صداقة", EN: "%s sent you a friend request"},
	}
)

func (t notificationText) build(userID uuid.UUID, lang string, data map[string]any, args ...any) *models.Notification {
	return models.NewNotification(userID, t.kind, t.title.In(lang), fmt.Sprintf(t.message.In(lang), args...), data)
}
