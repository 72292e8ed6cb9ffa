package builder

// Section returns the left-column data stored under key.
func (s ProjectSettings) Section(key string) map[string]any {
	switch key {
	case SettingsProfile:
		return s.ProfileData
	case SettingsVideo:
		return s.VideoData
	case SettingsSocialLink:
		return s.SocialLinkData
	case SettingsButton:
		return s.ButtonData
	default:
		return nil
	}
}

// SetSection replaces the left-column data stored under key. Unknown keys
// are ignored and reported as false.
func (s *ProjectSettings) SetSection(key string, data map[string]any) bool {
	switch key {
	case SettingsProfile:
		s.ProfileData = data
	case SettingsVideo:
		s.VideoData = data
	case SettingsSocialLink:
		s.SocialLinkData = data
	case SettingsButton:
		s.ButtonData = data
	default:
		return false
	}
	return true
}

// SectionKeys lists the left-column settings keys in a stable order.
func SectionKeys() []string {
	return []string{SettingsProfile, SettingsVideo, SettingsSocialLink, SettingsButton}
}

// Clone deep-copies the settings.
func (s ProjectSettings) Clone() ProjectSettings {
	out := ProjectSettings{Circle: s.Circle, Adult: s.Adult}
	for _, key := range SectionKeys() {
		out.SetSection(key, CloneMap(s.Section(key)))
	}
	return out
}

// Clone deep-copies the document.
func (d Document) Clone() Document {
	return Document{
		Blocks:   cloneBlocks(d.Blocks),
		Settings: d.Settings.Clone(),
	}
}

func cloneBlocks(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}
	out := make([]Block, len(blocks))
	for i, block := range blocks {
		out[i] = Block{
			ID:    block.ID,
			Type:  block.Type,
			Order: block.Order,
			Data:  CloneMap(block.Data),
		}
	}
	return out
}
