package moderation

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

var approvalText = map[models.ModerationKind]notificationText{
	models.KindEvent: {
		kind:    models.NotificationEventApproved,
		title:   models.Localized{AR: "تمت الموافقة على فعاليتك", EN: "Event approved"},
		message: models.Localized{AR: "تمت الموافقة على فعالية \"%s\" وأصبحت متاحة للحجز", EN: "Your event \"%s\" has been approved and is now live"},
	},
	models.KindService: {
		kind:    models.NotificationServiceApproved,
		title:   models.Localized{AR: "تمت الموافقة على خدمتك", EN: "Service approved"},
		message: models.Localized{AR: "تمت الموافقة على خدمة \"%s\" وأصبحت ظاهرة للعملاء", EN: "Your service \"%s\" has been approved and is now visible"},
	},
	models.KindProvider: {
		kind:    models.NotificationProviderApproved,
		title:   models.Localized{AR: "تم قبول طلبك كمزود خدمة", EN: "Provider application approved"},
		message: models.Localized{AR: "تم قبول طلب \"%s\" ويمكنك الآن إضافة خدماتك", EN: "Your application for \"%s\" was approved. You can now list services"},
	},
}

var rejectionText = map[models.ModerationKind]notificationText{
	models.KindEvent: {
		kind:    models.NotificationEventRejected,
		title:   models.Localized{AR: "تم رفض فعاليتك", EN: "Event rejected"},
		message: models.Localized{AR: "تم رفض فعالية \"%s\". السبب: %s", EN: "Your event \"%s\" was rejected. Reason: %s"},
	},
	models.KindService: {
		kind:    models.NotificationServiceRejected,
		title:   models.Localized{AR: "تم رفض خدمتك", EN: "Service rejected"},
		message: models.Localized{AR: "تم رفض خدمة \"%s\". السبب: %s", EN: "Your service \"%s\" was rejected. Reason: %s"},
	},
	models.KindProvider: {
		kind:    models.NotificationProviderRejected,
		title:   models.Localized{AR: "تم رفض طلبك كمزود خدمة", EN: "Provider application rejected"},
		message: models.Localized{AR: "تم رفض طلب \"%s\". السبب: %s", EN: "Your application for \"%s\" was rejected. Reason: %s"},
	},
}

var reportResolvedText = notificationText{
	kind:    models.NotificationReportResolved,
	title:   models.Localized{AR: "تمت مراجعة بلاغك", EN: "Your report was reviewed"},
	message: models.Localized{AR: "شكراً لك، تمت مراجعة البلاغ وتحديث حالته إلى %s", EN: "Thank you. Your report was reviewed and marked %s"},
}

func (t notificationText) build(userID uuid.UUID, lang string, data map[string]any, args ...any) *models.Notification {
	return models.NewNotification(userID, t.kind, t.title.In(lang), fmt.Sprintf(t.message.In(lang), args...), data)
}
