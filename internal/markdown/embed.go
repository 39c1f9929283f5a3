package markdown

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	youtubeID  = regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)
	bilibiliID = regexp.MustCompile(`bilibili\.com/video/(BV[a-zA-Z0-9]+)`)
	tencentID  = regexp.MustCompile(`v\.qq\.com/x/page/([a-zA-Z0-9]+)\.html`)
)

// EmbedURL maps a chapter's video link to a URL that can be used as an
// iframe src. Known hosts are rewritten to their player pages; any other
// http(s) URL is used as is. An empty string means the link must not be
// embedded.
func EmbedURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}

	if m := youtubeID.FindStringSubmatch(raw); m != nil {
		return "https://www.youtube.com/embed/" + m[1]
	}
	if m := bilibiliID.FindStringSubmatch(raw); m != nil {
		return "https://player.bilibili.com/player.html?bvid=" + m[1] + "&high_quality=1"
	}
	if m := tencentID.FindStringSubmatch(raw); m != nil {
		return "https://v.qq.com/txp/iframe/player.html?vid=" + m[1]
	}
	return raw
}
