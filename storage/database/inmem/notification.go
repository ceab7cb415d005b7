package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/hapiedu/hapi/core/notification"
)

type notificationRepository struct {
	prefs         *prefTable
	notifications *notificationTable
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{
		prefs:         db.prefs,
		notifications: db.notifications,
	}
}

func (repo *notificationRepository) GetPreference(ctx context.Context, userID string) (notification.Preference, error) {
	repo.prefs.RLock()
	defer repo.prefs.RUnlock()

	if pref, ok := repo.prefs.table[userID]; ok {
		return *pref, nil
	}
	return notification.Preference{}, notification.ErrNoPreference
}

func (repo *notificationRepository) SavePreference(ctx context.Context, pref notification.Preference) (notification.Preference, error) {
	repo.prefs.Lock()
	defer repo.prefs.Unlock()

	repo.prefs.table[pref.UserID] = &pref
	return pref, nil
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	repo.notifications.Lock()
	defer repo.notifications.Unlock()

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	repo.notifications.table[n.ID] = &n
	return n, nil
}

func (repo *notificationRepository) QueryNotifications(ctx context.Context, userID string, limit int) ([]notification.Notification, error) {
	repo.notifications.RLock()
	defer repo.notifications.RUnlock()

	out := make([]notification.Notification, 0)
	for _, n := range repo.notifications.table {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (repo *notificationRepository) MarkNotificationRead(ctx context.Context, notificationID, userID string) error {
	repo.notifications.Lock()
	defer repo.notifications.Unlock()

	n, ok := repo.notifications.table[notificationID]
	if !ok || n.UserID != userID {
		return notification.ErrNotificationNotFound
	}
	n.Read = true
	return nil
}

// Notifications returns all recorded notifications; test helper.
func (repo *notificationRepository) Notifications() []notification.Notification {
	repo.notifications.RLock()
	defer repo.notifications.RUnlock()

	out := make([]notification.Notification, 0, len(repo.notifications.table))
	for _, n := range repo.notifications.table {
		out = append(out, *n)
	}
	return out
}
