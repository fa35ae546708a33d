// Package callback defines every inline button payload the bot emits and a
// strict codec for them. Payloads are underscore-delimited tokens; a list
// filter, when present, is always the last token and may contain underscores.
package callback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxDataLen is the platform limit for callback data in bytes.
const MaxDataLen = 64

// MaxFilterLen bounds a list filter in bytes so that any list payload with a
// page number below 100000 fits MaxDataLen.
const MaxFilterLen = MaxDataLen - len(prefixApplicationList) - len("99999_")

var ErrUnknown = errors.New("unknown callback payload")

// Command is implemented only by the payload types of this package.
type Command interface {
	command()
}

type (
	Menu               struct{}
	ApplicationFilter  struct{}
	ApplicationCard    struct{ ID int64 }
	ApproveApplication struct{ ID int64 }
	RejectApplication  struct{ ID int64 }
	UpdateCategories   struct{}

	AdminList   struct{}
	AdminCard   struct{ ID int64 }
	AddAdmin    struct{}
	DemoteAdmin struct{ ID int64 }

	BlackListFilter     struct{}
	BlackListCard       struct{ ID int64 }
	AddToBlackList      struct{}
	RemoveFromBlackList struct{ UserID int64 }

	Fill                 struct{}
	ChooseSeller         struct{}
	ChooseBuyer          struct{}
	BackFromPhone        struct{}
	BackFromRole         struct{}
	BackFromOfficeNumber struct{}
	Submit               struct{}
)

// ApplicationList opens a page of pending applications.
type ApplicationList struct {
	Page   int
	Filter string
}

type BlackList struct {
	Page   int
	Filter string
}

func (Menu) command()                 {}
func (ApplicationList) command()      {}
func (ApplicationFilter) command()    {}
func (ApplicationCard) command()      {}
func (ApproveApplication) command()   {}
func (RejectApplication) command()    {}
func (UpdateCategories) command()     {}
func (AdminList) command()            {}
func (AdminCard) command()            {}
func (AddAdmin) command()             {}
func (DemoteAdmin) command()          {}
func (BlackList) command()            {}
func (BlackListFilter) command()      {}
func (BlackListCard) command()        {}
func (AddToBlackList) command()       {}
func (RemoveFromBlackList) command()  {}
func (Fill) command()                 {}
func (ChooseSeller) command()         {}
func (ChooseBuyer) command()          {}
func (BackFromPhone) command()        {}
func (BackFromRole) command()         {}
func (BackFromOfficeNumber) command() {}
func (Submit) command()               {}

const (
	dataMenu                 = "menu"
	dataApplicationFilter    = "applications_filter"
	dataUpdateCategories     = "update_categories"
	dataAdminList            = "admin_list"
	dataAddAdmin             = "add_admin"
	dataBlackListFilter      = "black_list_filter"
	dataAddToBlackList       = "add_to_black_list"
	dataFill                 = "fill"
	dataChooseSeller         = "role_seller"
	dataChooseBuyer          = "role_buyer"
	dataBackFromPhone        = "back_from_phone"
	dataBackFromRole         = "back_from_role"
	dataBackFromOfficeNumber = "back_from_office_number"
	dataSubmit               = "submit"

	prefixApplicationList     = "applications_"
	prefixApplicationCard     = "application_"
	prefixApprove             = "approve_application_"
	prefixReject              = "reject_application_"
	prefixAdminCard           = "admin_"
	prefixDemoteAdmin         = "remove_admin_"
	prefixBlackListCard       = "black_list_card_"
	prefixBlackList           = "black_list_"
	prefixRemoveFromBlackList = "remove_from_black_list_"
)

var exact = map[string]Command{
	dataMenu:                 Menu{},
	dataApplicationFilter:    ApplicationFilter{},
	dataUpdateCategories:     UpdateCategories{},
	dataAdminList:            AdminList{},
	dataAddAdmin:             AddAdmin{},
	dataBlackListFilter:      BlackListFilter{},
	dataAddToBlackList:       AddToBlackList{},
	dataFill:                 Fill{},
	dataChooseSeller:         ChooseSeller{},
	dataChooseBuyer:          ChooseBuyer{},
	dataBackFromPhone:        BackFromPhone{},
	dataBackFromRole:         BackFromRole{},
	dataBackFromOfficeNumber: BackFromOfficeNumber{},
	dataSubmit:               Submit{},
}

// Encode renders cmd as callback data. List filters are expected to respect
// MaxFilterLen.
func Encode(cmd Command) string {
	switch c := cmd.(type) {
	case Menu:
		return dataMenu
	case ApplicationList:
		return encodeList(prefixApplicationList, c.Page, c.Filter)
	case ApplicationFilter:
		return dataApplicationFilter
	case ApplicationCard:
		return prefixApplicationCard + strconv.FormatInt(c.ID, 10)
	case ApproveApplication:
		return prefixApprove + strconv.FormatInt(c.ID, 10)
	case RejectApplication:
		return prefixReject + strconv.FormatInt(c.ID, 10)
	case UpdateCategories:
		return dataUpdateCategories
	case AdminList:
		return dataAdminList
	case AdminCard:
		return prefixAdminCard + strconv.FormatInt(c.ID, 10)
	case AddAdmin:
		return dataAddAdmin
	case DemoteAdmin:
		return prefixDemoteAdmin + strconv.FormatInt(c.ID, 10)
	case BlackList:
		return encodeList(prefixBlackList, c.Page, c.Filter)
	case BlackListFilter:
		return dataBlackListFilter
	case BlackListCard:
		return prefixBlackListCard + strconv.FormatInt(c.ID, 10)
	case AddToBlackList:
		return dataAddToBlackList
	case RemoveFromBlackList:
		return prefixRemoveFromBlackList + strconv.FormatInt(c.UserID, 10)
	case Fill:
		return dataFill
	case ChooseSeller:
		return dataChooseSeller
	case ChooseBuyer:
		return dataChooseBuyer
	case BackFromPhone:
		return dataBackFromPhone
	case BackFromRole:
		return dataBackFromRole
	case BackFromOfficeNumber:
		return dataBackFromOfficeNumber
	case Submit:
		return dataSubmit
	}
	panic(fmt.Sprintf("callback: unhandled command %T", cmd))
}

func encodeList(prefix string, page int, filter string) string {
	data := prefix + strconv.Itoa(page)
	if filter == "" {
		return data
	}
	return data + "_" + filter
}

// Parse decodes callback data. Exact payloads are matched first, then
// prefixes from the most specific to the least.
func Parse(data string) (Command, error) {
	if cmd, ok := exact[data]; ok {
		return cmd, nil
	}

	switch {
	case strings.HasPrefix(data, prefixApplicationList):
		page, filter, err := parseList(data, prefixApplicationList)
		if err != nil {
			return nil, err
		}
		return ApplicationList{Page: page, Filter: filter}, nil
	case strings.HasPrefix(data, prefixApprove):
		return withID(data, prefixApprove, func(id int64) Command { return ApproveApplication{ID: id} })
	case strings.HasPrefix(data, prefixReject):
		return withID(data, prefixReject, func(id int64) Command { return RejectApplication{ID: id} })
	case strings.HasPrefix(data, prefixApplicationCard):
		return withID(data, prefixApplicationCard, func(id int64) Command { return ApplicationCard{ID: id} })
	case strings.HasPrefix(data, prefixDemoteAdmin):
		return withID(data, prefixDemoteAdmin, func(id int64) Command { return DemoteAdmin{ID: id} })
	case strings.HasPrefix(data, prefixAdminCard):
		return withID(data, prefixAdminCard, func(id int64) Command { return AdminCard{ID: id} })
	case strings.HasPrefix(data, prefixRemoveFromBlackList):
		return withID(data, prefixRemoveFromBlackList, func(id int64) Command { return RemoveFromBlackList{UserID: id} })
	case strings.HasPrefix(data, prefixBlackListCard):
		return withID(data, prefixBlackListCard, func(id int64) Command { return BlackListCard{ID: id} })
	case strings.HasPrefix(data, prefixBlackList):
		page, filter, err := parseList(data, prefixBlackList)
		if err != nil {
			return nil, err
		}
		return BlackList{Page: page, Filter: filter}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknown, data)
}

// parseList splits "<page>[_<filter>]" with a bounded split so the filter
// keeps its own underscores.
func parseList(data, prefix string) (int, string, error) {
	parts := strings.SplitN(strings.TrimPrefix(data, prefix), "_", 2)
	page, err := strconv.Atoi(parts[0])
	if err != nil || page < 1 {
		return 0, "", fmt.Errorf("%w: %q: bad page", ErrUnknown, data)
	}
	var filter string
	if len(parts) == 2 {
		filter = parts[1]
	}
	return page, filter, nil
}

func withID(data, prefix string, build func(int64) Command) (Command, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	if err != nil || id < 1 {
		return nil, fmt.Errorf("%w: %q: bad id", ErrUnknown, data)
	}
	return build(id), nil
}
