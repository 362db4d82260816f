// Package locale names the user-facing messages of the board and the port that renders them.
package locale

// Translator renders the message identified by key for the given locale.
// locale may be a tag or an Accept-Language header; data fills template placeholders and may be nil.
type Translator interface {
	T(locale, key string, data map[string]any) string
}

// Message keys. The English text lives in the translation bundles.
const (
	KeyNoMatches        = "board_no_matches"
	KeyLoadFailed       = "board_load_failed"
	KeyAllCategories    = "board_all_categories"
	KeySelectActivity   = "board_select_activity"
	KeyNoParticipants   = "board_no_participants"
	KeySpotsLeft        = "board_spots_left"
	KeyParticipants     = "board_participants"
	KeyCategory         = "board_category"
	KeySchedule         = "board_schedule"
	KeyAvailability     = "board_availability"
	KeyTitle            = "board_title"
	KeyAvailableHeading = "board_available_heading"
	KeySignUpHeading    = "board_signup_heading"
	KeySearchLabel      = "board_search_label"
	KeySearchHint       = "board_search_placeholder"
	KeyCategoryFilter   = "board_category_filter_label"
	KeySortLabel        = "board_sort_label"
	KeyEmailLabel       = "board_email_label"
	KeyActivityLabel    = "board_activity_label"
	KeySignUpButton     = "board_signup_button"
	KeyApplyButton      = "board_apply_button"
	KeyRefreshButton    = "board_refresh_button"
	KeyRemoveLabel      = "board_remove_participant"
	KeySortNameAsc      = "sort_name_asc"
	KeySortNameDesc     = "sort_name_desc"
	KeySortTimeAsc      = "sort_time_asc"
	KeySortTimeDesc     = "sort_time_desc"
	KeyGenericError     = "action_generic_error"
	KeySignUpFailed     = "action_signup_failed"
	KeyUnregisterFailed = "action_unregister_failed"
	KeyMissingFields    = "action_missing_fields"
	KeyHiddenActivity   = "action_hidden_activity"
	KeyRefreshed        = "action_refreshed"
	KeyConfirmSubject   = "email_confirmation_subject"
	KeyConfirmBody      = "email_confirmation_body"
)

// Static is a Translator backed by a fixed map, used when no bundle is configured.
// Unknown keys render as the key itself.
type Static map[string]string

// T implements Translator. Placeholders are not expanded.
func (s Static) T(_ string, key string, _ map[string]any) string {
	if v, ok := s[key]; ok {
		return v
	}
	return key
}
