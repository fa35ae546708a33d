package fsm

type State string

const StateNone State = ""

// Admin flow states. Free text is interpreted only in the filter and add states.
const (
	StateAdminMenu State = "admin_menu"

	StateAdminApplicationList       State = "admin_application_list"
	StateAdminApplicationListFilter State = "admin_application_list_filter"
	StateAdminApplicationCard       State = "admin_application_card"
	StateAdminApplicationCardError  State = "admin_application_card_error"
	StateAdminApplicationApproved   State = "admin_application_approved"
	StateAdminApplicationApproveErr State = "admin_application_approve_error"
	StateAdminApplicationRejected   State = "admin_application_rejected"
	StateAdminApplicationRejectErr  State = "admin_application_reject_error"

	StateAdminUpdateCategoriesSuccess State = "admin_update_categories_success"
	StateAdminUpdateCategoriesError   State = "admin_update_categories_error"

	StateAdminList          State = "admin_admin_list"
	StateAdminCard          State = "admin_admin_card"
	StateAdminCardError     State = "admin_admin_card_error"
	StateAdminAdd           State = "admin_admin_add"
	StateAdminAddSuccess    State = "admin_admin_add_success"
	StateAdminDemoteSuccess State = "admin_admin_demote_success"

	StateAdminBlackList              State = "admin_black_list"
	StateAdminBlackListFilter        State = "admin_black_list_filter"
	StateAdminBlackListCard          State = "admin_black_list_card"
	StateAdminBlackListCardError     State = "admin_black_list_card_error"
	StateAdminBlackListAdd           State = "admin_black_list_add"
	StateAdminBlackListAddSuccess    State = "admin_black_list_add_success"
	StateAdminBlackListRemoveSuccess State = "admin_black_list_remove_success"
)

// User intake states.
const (
	StateUserWelcome      State = "user_welcome"
	StateUserFIO          State = "user_fio"
	StateUserPhone        State = "user_phone"
	StateUserRole         State = "user_role"
	StateUserOfficeNumber State = "user_office_number"
	StateUserVerification State = "user_verification"
	StateUserSubmitted    State = "user_submitted"
)

// AcceptsAdminInput reports whether free text is meaningful in the state.
func AcceptsAdminInput(s State) bool {
	switch s {
	case StateAdminApplicationListFilter, StateAdminAdd, StateAdminBlackListFilter, StateAdminBlackListAdd:
		return true
	}
	return false
}
