package tiktok

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

const ssrScriptID = "__UNIVERSAL_DATA_FOR_REHYDRATION__"

// extractUniversalData parses the rehydration JSON embedded in TikTok's
// server-rendered profile pages.
func extractUniversalData(htmlBody []byte) (universalData, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		return universalData{}, fmt.Errorf("parse profile html: %w", err)
	}

	raw := doc.Find("script#" + ssrScriptID).First().Text()
	if raw == "" {
		return universalData{}, fmt.Errorf("%w: rehydration script tag not found", ErrInvalidResponse)
	}

	var data universalData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return universalData{}, fmt.Errorf("unmarshal ssr data: %w", err)
	}

	return data, nil
}

// extractUserFromSSR pulls the Author out of parsed SSR data.
func extractUserFromSSR(data universalData) (Author, error) {
	info := data.DefaultScope.UserDetail.UserInfo
	if info.User.UniqueID == "" {
		return Author{}, fmt.Errorf("%w: user data missing in ssr response", ErrNotFound)
	}

	return parseAuthor(info), nil
}
