package mw

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

var (
	mobileRe  = regexp.MustCompile(`(?i)iPhone|iPad|iPod|Android`)
	iPhoneRe  = regexp.MustCompile(`(?i)iPhone|iPod`)
	androidRe = regexp.MustCompile(`(?i)Android`)
	phoneRe   = regexp.MustCompile(`Mobile`)

	// genericBotRe catches self-identified crawlers.
	genericBotRe = regexp.MustCompile(`(?i)bot\b|crawl|spider|slurp|headless`)
	// botPatternsRe lists link-preview and inspection agents that do not call themselves bots.
	botPatternsRe = regexp.MustCompile(`(?i)Google-InspectionTool|Google-CloudVertexBot|Google-Other|facebookexternalhit|facebookcatalog|Twitterbot|LinkedInBot|Slackbot|Discordbot|WhatsApp|TelegramBot|Applebot|SkypeUriPreview|redditbot|vkShare|bitlybot|ia_archiver|Mediapartners-Google`)
)

// Platform is the download destination for a user agent.
type Platform int

const (
	PlatformOther Platform = iota
	PlatformBot
	PlatformIOS
	PlatformAndroid
)

// IsMobile reports whether ua belongs to a phone or tablet.
func IsMobile(ua string) bool {
	return mobileRe.MatchString(ua)
}

// IsBot reports whether ua is a crawler or link-preview agent.
func IsBot(ua string) bool {
	return genericBotRe.MatchString(ua) || botPatternsRe.MatchString(ua)
}

// DetectPlatform classifies ua for /download. Bots are checked first;
// tablets, including iPads and Android devices without "Mobile", count as other.
func DetectPlatform(ua string) Platform {
	switch {
	case IsBot(ua):
		return PlatformBot
	case iPhoneRe.MatchString(ua):
		return PlatformIOS
	case androidRe.MatchString(ua) && phoneRe.MatchString(ua):
		return PlatformAndroid
	default:
		return PlatformOther
	}
}

// MobileDeepLink redirects mobile browsers from /truck/:truck_id to
// /m/truck/:truck_id, a path the installed app claims through universal and
// app links. Other clients fall through.
func MobileDeepLink() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsMobile(c.Request.UserAgent()) {
			c.Next()
			return
		}
		target := "/m/truck/" + c.Param("truck_id")
		if c.Request.URL.RawQuery != "" {
			target += "?" + c.Request.URL.RawQuery
		}
		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}

// StoreRedirect sends phones on /download to their app store with a 307.
// Bots, tablets and desktops fall through to the fallback handler.
func StoreRedirect(appStore, googlePlay string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var target string
		switch DetectPlatform(c.Request.UserAgent()) {
		case PlatformIOS:
			target = appStore
		case PlatformAndroid:
			target = googlePlay
		}
		if target == "" {
			c.Next()
			return
		}
		c.Redirect(http.StatusTemporaryRedirect, target)
		c.Abort()
	}
}
