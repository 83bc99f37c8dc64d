package enums

import "fmt"

// NotificationCategory identifies the structured kind of a notification.
// Low-stock de-duplication keys on this category plus the related product,
// never on message text.
type NotificationCategory string

const (
	NotificationCategoryLowStock NotificationCategory = "low_stock"
	NotificationCategoryBackup   NotificationCategory = "backup"
	NotificationCategoryGeneral  NotificationCategory = "general"
)

var validNotificationCategories = []NotificationCategory{
	NotificationCategoryLowStock,
	NotificationCategoryBackup,
	NotificationCategoryGeneral,
}

// IsValid checks whether the given category matches the canonical enum.
func (n NotificationCategory) IsValid() bool {
	for _, candidate := range validNotificationCategories {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationCategory converts raw strings into NotificationCategory.
func ParseNotificationCategory(value string) (NotificationCategory, error) {
	for _, candidate := range validNotificationCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification category %q", value)
}
