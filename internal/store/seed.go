package store

import (
	"time"

	"github.com/sponsorship-studio/engine/internal/models"
)

var seedTime = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

// SeedProjects returns the built-in dataset a fresh slot starts with.
func SeedProjects() []models.Project {
	return []models.Project{
		{
			ID:          1,
			Title:       "منصة تعليمية رقمية للمناطق الريفية",
			Description: "منصة تعليم عن بعد تحتاج إلى خوادم لاستضافة الدروس المصورة.",
			Category:    "تعليم",
			Wilaya:      "الجزائر",
			Status:      models.ProjectStatusAvailable,
			Verified:    true,
			OwnerID:     "1",
			Goal:        &models.ResourceCommitment{ResourceType: "servers", Quantity: 10, Condition: "new"},
			Raised:      &models.ResourceCommitment{ResourceType: "servers", Quantity: 4, Condition: "new"},
			Documents: []models.Document{
				{Name: "السجل التجاري", Status: "verified"},
				{Name: "دراسة الجدوى", Status: "pending"},
			},
			Updates: []models.Update{
				{ID: 1, Timestamp: seedTime, Content: "تم تركيب أول خادمين في مركز البيانات."},
			},
			Messages:  []models.Message{},
			Images:    []string{"/images/projects/edu-1.jpg"},
			CreatedAt: seedTime,
		},
		{
			ID:          2,
			Title:       "ورشة صيانة الحواسيب للشباب",
			Description: "ورشة تدريبية لإصلاح الحواسيب المستعملة وإعادة توزيعها على المدارس.",
			Category:    "تكنولوجيا",
			Wilaya:      "وهران",
			Status:      models.ProjectStatusAvailable,
			Verified:    false,
			OwnerID:     "1",
			Goal:        &models.ResourceCommitment{ResourceType: "laptops", Quantity: 25, Condition: "used"},
			Raised:      nil,
			Documents:   []models.Document{{Name: "السجل التجاري", Status: "pending"}},
			Updates:     []models.Update{},
			Messages:    []models.Message{},
			Images:      []string{},
			CreatedAt:   seedTime.Add(24 * time.Hour),
		},
		{
			ID:          3,
			Title:       "مزرعة مائية ذكية",
			Description: "مشروع زراعة مائية يحتاج إلى مضخات وأجهزة استشعار.",
			Category:    "فلاحة",
			Wilaya:      "سطيف",
			Status:      models.ProjectStatusPending,
			Verified:    false,
			OwnerID:     "1",
			Goal:        &models.ResourceCommitment{ResourceType: "sensors", Quantity: 40, Condition: "new"},
			Raised:      &models.ResourceCommitment{ResourceType: "sensors", Quantity: 30, Condition: "new"},
			Documents:   []models.Document{},
			Updates:     []models.Update{},
			Messages: []models.Message{
				{ID: 1, Sender: "sponsor@example.com", Content: "هل يمكن استلام أجهزة مستعملة؟", Timestamp: seedTime},
			},
			Images:    []string{"/images/projects/agri-1.jpg", "/images/projects/agri-2.jpg"},
			CreatedAt: seedTime.Add(48 * time.Hour),
		},
	}
}
