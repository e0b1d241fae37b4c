package services

import "net/url"

// AssetPolicy restricts which hosts floor-plan and photo URLs may point at.
// The allow-list mirrors the image host configuration the frontend enforces;
// an empty list permits everything (unconfigured deployments).
type AssetPolicy struct {
	hosts map[string]bool
}

func NewAssetPolicy(allowedHosts []string) *AssetPolicy {
	p := &AssetPolicy{hosts: make(map[string]bool, len(allowedHosts))}
	for _, h := range allowedHosts {
		p.hosts[h] = true
	}
	return p
}

// Sanitize nils out URLs whose host is not on the allow-list, so clients
// never receive an asset reference to an unexpected origin.
func (p *AssetPolicy) Sanitize(raw *string) *string {
	if raw == nil || len(p.hosts) == 0 {
		return raw
	}
	u, err := url.Parse(*raw)
	if err != nil || !p.hosts[u.Hostname()] {
		return nil
	}
	return raw
}
