package tiktok

import (
	"fmt"
	"time"
)

// Video is a single TikTok upload with its engagement metrics.
type Video struct {
	ID          string
	Description string
	Username    string
	Cover       string
	CreatedAt   time.Time
	Views       int
	Likes       int
	Comments    int
	Shares      int
}

// URL returns the canonical web address of the video.
func (v Video) URL() string {
	return fmt.Sprintf("https://www.tiktok.com/@%v/video/%v", v.Username, v.ID)
}

// Author is a TikTok account profile.
type Author struct {
	ID         string
	SecUID     string
	Username   string
	Nickname   string
	Bio        string
	AvatarURL  string
	Verified   bool
	Followers  int
	VideoCount int
}

// Raw JSON structs matching TikTok's wire format.

type itemListResponse struct {
	ItemList   []rawVideo `json:"itemList"`
	HasMore    bool       `json:"hasMore"`
	Cursor     string     `json:"cursor"`
	StatusCode int        `json:"statusCode"`
}

type rawVideo struct {
	ID         string    `json:"id"`
	Desc       string    `json:"desc"`
	CreateTime int64     `json:"createTime"`
	Author     rawAuthor `json:"author"`
	Video      rawClip   `json:"video"`
	Stats      rawStats  `json:"stats"`
}

type rawAuthor struct {
	ID       string `json:"id"`
	UniqueID string `json:"uniqueId"`
	Nickname string `json:"nickname"`
	SecUID   string `json:"secUid"`
	Verified bool   `json:"verified"`
}

type rawClip struct {
	Cover string `json:"cover"`
}

type rawStats struct {
	PlayCount    int `json:"playCount"`
	DiggCount    int `json:"diggCount"`
	ShareCount   int `json:"shareCount"`
	CommentCount int `json:"commentCount"`
}

// SSR structs for the __UNIVERSAL_DATA_FOR_REHYDRATION__ payload embedded in
// profile pages.

type universalData struct {
	DefaultScope defaultScope `json:"__DEFAULT_SCOPE__"`
}

type defaultScope struct {
	UserDetail userDetailWrapper `json:"webapp.user-detail"`
}

type userDetailWrapper struct {
	UserInfo rawUserInfo `json:"userInfo"`
}

type rawUserInfo struct {
	User  rawUserDetail `json:"user"`
	Stats rawUserStats  `json:"stats"`
}

type rawUserDetail struct {
	ID           string `json:"id"`
	UniqueID     string `json:"uniqueId"`
	Nickname     string `json:"nickname"`
	AvatarLarger string `json:"avatarLarger"`
	Signature    string `json:"signature"`
	Verified     bool   `json:"verified"`
	SecUID       string `json:"secUid"`
}

type rawUserStats struct {
	FollowerCount int `json:"followerCount"`
	VideoCount    int `json:"videoCount"`
}

func parseVideo(raw rawVideo) Video {
	return Video{
		ID:          raw.ID,
		Description: raw.Desc,
		Username:    raw.Author.UniqueID,
		Cover:       raw.Video.Cover,
		CreatedAt:   time.Unix(raw.CreateTime, 0),
		Views:       raw.Stats.PlayCount,
		Likes:       raw.Stats.DiggCount,
		Comments:    raw.Stats.CommentCount,
		Shares:      raw.Stats.ShareCount,
	}
}

func parseAuthor(raw rawUserInfo) Author {
	return Author{
		ID:         raw.User.ID,
		SecUID:     raw.User.SecUID,
		Username:   raw.User.UniqueID,
		Nickname:   raw.User.Nickname,
		Bio:        raw.User.Signature,
		AvatarURL:  raw.User.AvatarLarger,
		Verified:   raw.User.Verified,
		Followers:  raw.Stats.FollowerCount,
		VideoCount: raw.Stats.VideoCount,
	}
}
