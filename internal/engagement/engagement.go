// Package engagement turns reaction and view rows into the actor lists and
// counts shown with every post.
package engagement

import (
	"slices"
	"strings"

	"github.com/aidenai/intranet/backend/internal/models"
)

const likeLabel = "like"

// LikedUsers lists users holding a "like" reaction (any case) in the order
// the reactions are given, each user at the position of their last like.
func LikedUsers(reactions []models.Reaction) []string {
	users := make([]string, 0, len(reactions))
	for _, r := range reactions {
		if strings.ToLower(r.Reaction) == likeLabel {
			users = append(users, r.User)
		}
	}
	return dedupeKeepLast(users)
}

// SeenBy lists viewers ordered by view time, each at the position of their
// last view. Views without a timestamp come first, in id order.
func SeenBy(views []models.PostView) []string {
	ordered := slices.Clone(views)
	slices.SortStableFunc(ordered, func(a, b models.PostView) int {
		switch {
		case a.ViewedAt == nil && b.ViewedAt == nil:
			return compareID(a.ID, b.ID)
		case a.ViewedAt == nil:
			return -1
		case b.ViewedAt == nil:
			return 1
		}
		if c := a.ViewedAt.Compare(*b.ViewedAt); c != 0 {
			return c
		}
		return compareID(a.ID, b.ID)
	})

	users := make([]string, 0, len(ordered))
	for _, v := range ordered {
		users = append(users, v.User)
	}
	return dedupeKeepLast(users)
}

// dedupeKeepLast drops every occurrence of a user except the last one while
// keeping the relative order of survivors.
func dedupeKeepLast(users []string) []string {
	seen := make(map[string]struct{}, len(users))
	out := make([]string, 0, len(users))
	for i := len(users) - 1; i >= 0; i-- {
		if _, ok := seen[users[i]]; ok {
			continue
		}
		seen[users[i]] = struct{}{}
		out = append(out, users[i])
	}
	slices.Reverse(out)
	return out
}

func compareID(a, b uint) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// BuildPost assembles the response shared by create, get, list and update.
// Reactions and views keep the order they were loaded in.
// Slices are never nil so they encode as [].
func BuildPost(post *models.Post, counts models.EngagementCounts) models.PostResponse {
	attachments := post.Attachments
	if attachments == nil {
		attachments = []models.Attachment{}
	}
	reactions := post.Reactions
	if reactions == nil {
		reactions = []models.Reaction{}
	}

	return models.PostResponse{
		ID:           post.ID,
		Title:        post.Title,
		Description:  post.Description,
		Author:       post.Author,
		AnnounceType: post.AnnounceType,
		CreatedAt:    post.CreatedAt,
		UpdatedAt:    post.UpdatedAt,
		Attachments:  attachments,
		Reactions:    reactions,
		ViewsCount:   counts.Views,
		RepliesCount: counts.Replies,
		SharesCount:  counts.Shares,
		LikedUsers:   LikedUsers(post.Reactions),
		SeenBy:       SeenBy(post.Views),
	}
}

// BuildPosts applies BuildPost to a page, looking counts up by post id.
func BuildPosts(posts []models.Post, counts map[uint]models.EngagementCounts) []models.PostResponse {
	out := make([]models.PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, BuildPost(&posts[i], counts[posts[i].ID]))
	}
	return out
}
