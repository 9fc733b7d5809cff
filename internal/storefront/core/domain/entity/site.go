package entity

import "fmt"

type SiteStatus string

const (
	SiteOnline  SiteStatus = "ONLINE"
	SiteOffline SiteStatus = "OFFLINE"
)

// ParseSiteStatus accepts the two wire values and nothing else.
func ParseSiteStatus(s string) (SiteStatus, error) {
	switch SiteStatus(s) {
	case SiteOnline, SiteOffline:
		return SiteStatus(s), nil
	default:
		return "", fmt.Errorf("unknown site status %q", s)
	}
}

// SiteAvailability is the last known ordering status of the storefront.
type SiteAvailability struct {
	Status         SiteStatus
	OfflineMessage string
}

func (a SiteAvailability) Online() bool {
	return a.Status == SiteOnline
}
