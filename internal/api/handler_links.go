package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MobileFallback handles /m/*path. The app intercepts these links when it is
// installed; a browser that lands here goes to the home page. Redirecting to
// /truck/:truck_id would bounce a mobile browser straight back here.
func (h *Handler) MobileFallback(c *gin.Context) {
	c.Redirect(http.StatusFound, "/")
}

// GetDownload is the /download fallback shown to bots, tablets and desktops.
func (h *Handler) GetDownload(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"app_store":   h.links.AppStore,
		"google_play": h.links.GooglePlay,
	})
}

type appleDetail struct {
	AppIDs     []string `json:"appIDs"`
	Components []gin.H  `json:"components"`
}

// GetAppleAppSiteAssociation serves /.well-known/apple-app-site-association.
func (h *Handler) GetAppleAppSiteAssociation(c *gin.Context) {
	components := make([]gin.H, 0, len(h.appLinks.AppleLinkPaths))
	for _, p := range h.appLinks.AppleLinkPaths {
		components = append(components, gin.H{"/": p})
	}

	details := []appleDetail{}
	if len(h.appLinks.AppleAppIDs) > 0 {
		details = append(details, appleDetail{AppIDs: h.appLinks.AppleAppIDs, Components: components})
	}

	c.JSON(http.StatusOK, gin.H{
		"applinks":       gin.H{"details": details},
		"webcredentials": gin.H{"apps": nonNil(h.appLinks.AppleAppIDs)},
	})
}

type assetLink struct {
	Relation []string    `json:"relation"`
	Target   assetTarget `json:"target"`
}

type assetTarget struct {
	Namespace    string   `json:"namespace"`
	PackageName  string   `json:"package_name"`
	Fingerprints []string `json:"sha256_cert_fingerprints"`
}

// GetAssetLinks serves /.well-known/assetlinks.json.
func (h *Handler) GetAssetLinks(c *gin.Context) {
	links := make([]assetLink, 0, len(h.appLinks.AndroidPackages))
	for _, p := range h.appLinks.AndroidPackages {
		relation := []string{"delegate_permission/common.handle_all_urls"}
		if p.LoginCreds {
			relation = append(relation, "delegate_permission/common.get_login_creds")
		}
		links = append(links, assetLink{
			Relation: relation,
			Target: assetTarget{
				Namespace:    "android_app",
				PackageName:  p.Name,
				Fingerprints: nonNil(p.Fingerprints),
			},
		})
	}
	c.JSON(http.StatusOK, links)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
