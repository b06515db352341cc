package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/viewvault/viewvault/internal/metrics"
	"github.com/viewvault/viewvault/internal/models"
)

// NotifyController scans for newly released movies and freshly aired
// episodes that appear in user lists, records a notification per owning
// user, and optionally delivers them to a webhook.
type NotifyController struct {
	db         *models.Database
	logger     *logrus.Logger
	webhookURL string
	httpClient *http.Client
}

// NewNotifyController creates a new notify controller. An empty webhookURL
// disables delivery; notifications are still recorded.
func NewNotifyController(db *models.Database, webhookURL string, logger *logrus.Logger) *NotifyController {
	return &NotifyController{
		db:         db,
		logger:     logger,
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// CheckReleases scans the window (now-since, now] for releases and creates
// one notification per (user, item), skipping users already notified
func (c *NotifyController) CheckReleases(ctx context.Context, since time.Duration) error {
	now := time.Now()
	from := now.Add(-since)

	movies, err := c.db.MoviesReleasedBetween(ctx, from, now)
	if err != nil {
		return fmt.Errorf("failed to query released movies: %w", err)
	}
	episodes, err := c.db.EpisodesAiredBetween(ctx, from, now)
	if err != nil {
		return fmt.Errorf("failed to query aired episodes: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"movies":   len(movies),
		"episodes": len(episodes),
	}).Info("Release scan")

	if err := c.notifyMovies(ctx, movies); err != nil {
		return err
	}
	return c.notifyEpisodes(ctx, episodes)
}

func (c *NotifyController) notifyMovies(ctx context.Context, movies []*models.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	byID := make(map[uint64]*models.Movie, len(movies))
	ids := make([]uint64, 0, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
		ids = append(ids, m.ID)
	}

	watchers, err := c.db.FindWatchers(ctx, models.ItemTypeMovie, ids)
	if err != nil {
		return fmt.Errorf("failed to find watchers: %w", err)
	}

	for _, w := range watchers {
		movie := byID[w.ItemID]
		if movie == nil {
			continue
		}
		c.emit(ctx, &models.Notification{
			UserID:   w.UserID,
			ListID:   w.ListID,
			ItemID:   movie.ID,
			ItemType: models.ItemTypeMovie,
			Title:    movie.Title,
			Message:  fmt.Sprintf("%s is out now", movie.Title),
		})
	}
	return nil
}

func (c *NotifyController) notifyEpisodes(ctx context.Context, episodes []*models.Episode) error {
	if len(episodes) == 0 {
		return nil
	}
	byID := make(map[uint64]*models.Episode, len(episodes))
	episodeIDs := make([]uint64, 0, len(episodes))
	seriesIDs := make([]uint64, 0, len(episodes))
	for _, e := range episodes {
		byID[e.ID] = e
		episodeIDs = append(episodeIDs, e.ID)
		seriesIDs = append(seriesIDs, e.SeriesID)
	}

	// Users tracking the episode itself or its parent series both count
	watchers, err := c.db.FindWatchers(ctx, models.ItemTypeEpisode, episodeIDs)
	if err != nil {
		return fmt.Errorf("failed to find episode watchers: %w", err)
	}
	seriesWatchers, err := c.db.FindWatchers(ctx, models.ItemTypeSeries, seriesIDs)
	if err != nil {
		return fmt.Errorf("failed to find series watchers: %w", err)
	}

	for _, w := range watchers {
		episode := byID[w.ItemID]
		if episode == nil {
			continue
		}
		c.emit(ctx, c.episodeNotification(w, episode))
	}
	for _, w := range seriesWatchers {
		for _, episode := range episodes {
			if episode.SeriesID != w.ItemID {
				continue
			}
			n := c.episodeNotification(w, episode)
			n.ItemID = episode.ID
			c.emit(ctx, n)
		}
	}
	return nil
}

func (c *NotifyController) episodeNotification(w models.WatcherRef, episode *models.Episode) *models.Notification {
	return &models.Notification{
		UserID:   w.UserID,
		ListID:   w.ListID,
		ItemID:   episode.ID,
		ItemType: models.ItemTypeEpisode,
		Title:    episode.Title,
		Message:  fmt.Sprintf("S%02dE%02d %s has aired", episode.SeasonNumber, episode.EpisodeNumber, episode.Title),
	}
}

// emit records one notification unless the user was already notified about
// this item, then attempts webhook delivery. Delivery failures are logged,
// never fatal to the scan.
func (c *NotifyController) emit(ctx context.Context, n *models.Notification) {
	already, err := c.db.HasNotification(ctx, n.UserID, n.ItemID, n.ItemType)
	if err != nil {
		c.logger.WithError(err).Warn("Notification dedupe check failed, skipping")
		return
	}
	if already {
		return
	}

	if err := c.db.CreateNotification(ctx, n); err != nil {
		c.logger.WithError(err).Error("Failed to record notification")
		return
	}
	metrics.NotificationsSent.WithLabelValues("recorded").Inc()

	if c.webhookURL == "" {
		return
	}
	if err := c.deliver(ctx, n); err != nil {
		c.logger.WithError(err).WithField("user_id", n.UserID).Error("Webhook delivery failed")
		metrics.NotificationsSent.WithLabelValues("delivery_failed").Inc()
		return
	}
	metrics.NotificationsSent.WithLabelValues("delivered").Inc()
}

// deliver POSTs the notification to the configured webhook with exponential
// backoff. Client errors are permanent; server errors and transport
// failures are retried.
func (c *NotifyController) deliver(ctx context.Context, n *models.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(fmt.Errorf("webhook rejected notification: %s", resp.Status))
		}
		return fmt.Errorf("webhook returned %s", resp.Status)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
	return backoff.Retry(operation, policy)
}
