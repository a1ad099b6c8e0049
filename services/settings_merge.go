package services

import "storefront-service/models"

// mergeSettings shallow-merges the source tenant's storefront settings into
// the target's. The target's values win wherever it has one; source values
// only fill fields the target left empty. PaymentMethods is the one list
// that is concatenated instead of overwritten: the target's entries keep
// their order and source-only entries are appended, deduplicated by value.
func mergeSettings(source, target *models.StorefrontSettings) *models.StorefrontSettings {
	merged := &models.StorefrontSettings{
		TenantID:   target.TenantID,
		ThemeColor: target.ThemeColor,
		BannerURL:  target.BannerURL,
		WhatsApp:   target.WhatsApp,
	}
	if merged.ThemeColor == "" {
		merged.ThemeColor = source.ThemeColor
	}
	if merged.BannerURL == "" {
		merged.BannerURL = source.BannerURL
	}
	if merged.WhatsApp == "" {
		merged.WhatsApp = source.WhatsApp
	}

	seen := make(map[string]struct{}, len(target.PaymentMethods)+len(source.PaymentMethods))
	for _, m := range target.PaymentMethods {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		merged.PaymentMethods = append(merged.PaymentMethods, m)
	}
	for _, m := range source.PaymentMethods {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		merged.PaymentMethods = append(merged.PaymentMethods, m)
	}

	if len(source.Extra) > 0 || len(target.Extra) > 0 {
		merged.Extra = make(map[string]any, len(source.Extra)+len(target.Extra))
		for k, v := range source.Extra {
			merged.Extra[k] = v
		}
		for k, v := range target.Extra {
			merged.Extra[k] = v
		}
	}
	return merged
}
