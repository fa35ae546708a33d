package callback

import (
	"errors"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func genCommand() *rapid.Generator[Command] {
	id := rapid.Int64Range(1, 1<<40)
	page := rapid.IntRange(1, 10_000)
	filter := rapid.StringMatching(`[а-яА-Яa-zA-Z0-9_ ]{0,12}`)

	return rapid.OneOf(
		rapid.Just[Command](Menu{}),
		rapid.Custom(func(t *rapid.T) Command {
			return ApplicationList{Page: page.Draw(t, "page"), Filter: filter.Draw(t, "filter")}
		}),
		rapid.Just[Command](ApplicationFilter{}),
		rapid.Custom(func(t *rapid.T) Command { return ApplicationCard{ID: id.Draw(t, "id")} }),
		rapid.Custom(func(t *rapid.T) Command { return ApproveApplication{ID: id.Draw(t, "id")} }),
		rapid.Custom(func(t *rapid.T) Command { return RejectApplication{ID: id.Draw(t, "id")} }),
		rapid.Just[Command](UpdateCategories{}),
		rapid.Just[Command](AdminList{}),
		rapid.Custom(func(t *rapid.T) Command { return AdminCard{ID: id.Draw(t, "id")} }),
		rapid.Just[Command](AddAdmin{}),
		rapid.Custom(func(t *rapid.T) Command { return DemoteAdmin{ID: id.Draw(t, "id")} }),
		rapid.Custom(func(t *rapid.T) Command {
			return BlackList{Page: page.Draw(t, "page"), Filter: filter.Draw(t, "filter")}
		}),
		rapid.Just[Command](BlackListFilter{}),
		rapid.Custom(func(t *rapid.T) Command { return BlackListCard{ID: id.Draw(t, "id")} }),
		rapid.Just[Command](AddToBlackList{}),
		rapid.Custom(func(t *rapid.T) Command { return RemoveFromBlackList{UserID: id.Draw(t, "id")} }),
		rapid.Just[Command](Fill{}),
		rapid.Just[Command](ChooseSeller{}),
		rapid.Just[Command](ChooseBuyer{}),
		rapid.Just[Command](BackFromPhone{}),
		rapid.Just[Command](BackFromRole{}),
		rapid.Just[Command](BackFromOfficeNumber{}),
		rapid.Just[Command](Submit{}),
	)
}

func TestEncodeParse_RoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cmd := genCommand().Draw(t, "cmd")

		data := Encode(cmd)
		if len(data) > MaxDataLen {
			t.Fatalf("payload %q exceeds %d bytes", data, MaxDataLen)
		}

		parsed, err := Parse(data)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", data, err)
		}
		if parsed != cmd {
			t.Fatalf("round trip mismatch: %#v -> %q -> %#v", cmd, data, parsed)
		}
	})
}

func TestParse_FilterKeepsUnderscores(t *testing.T) {
	cmd, err := Parse("black_list_3_ivan_petrov_")
	if err != nil {
		t.Fatal(err)
	}
	want := BlackList{Page: 3, Filter: "ivan_petrov_"}
	if cmd != want {
		t.Errorf("expected %#v, got %#v", want, cmd)
	}
}

func TestParse_PrefixPrecedence(t *testing.T) {
	cases := map[string]Command{
		"applications_filter":       ApplicationFilter{},
		"applications_2":            ApplicationList{Page: 2},
		"application_42":            ApplicationCard{ID: 42},
		"admin_list":                AdminList{},
		"admin_7":                   AdminCard{ID: 7},
		"black_list_filter":         BlackListFilter{},
		"black_list_card_5":         BlackListCard{ID: 5},
		"black_list_1":              BlackList{Page: 1},
		"remove_from_black_list_99": RemoveFromBlackList{UserID: 99},
		"remove_admin_3":            DemoteAdmin{ID: 3},
	}
	for data, want := range cases {
		got, err := Parse(data)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", data, err)
			continue
		}
		if got != want {
			t.Errorf("Parse(%q) = %#v, want %#v", data, got, want)
		}
	}
}

func TestParse_UnknownFailsExplicitly(t *testing.T) {
	for _, data := range []string{
		"",
		"hint:1:2",
		"applications_",
		"applications_0",
		"applications_x_filter",
		"application_",
		"application_-1",
		"approve_application_abc",
		"black_list_",
		"admin_",
		"menu_",
	} {
		cmd, err := Parse(data)
		if !errors.Is(err, ErrUnknown) {
			t.Errorf("Parse(%q) = %#v, %v; want ErrUnknown", data, cmd, err)
		}
		if cmd != nil {
			t.Errorf("Parse(%q) returned a command alongside an error", data)
		}
	}
}

func TestEncode_LongestFilterFits(t *testing.T) {
	for _, filter := range []string{strings.Repeat("a", MaxFilterLen), strings.Repeat("Ж", MaxFilterLen/2)} {
		for _, cmd := range []Command{
			ApplicationList{Page: 99999, Filter: filter},
			BlackList{Page: 99999, Filter: filter},
		} {
			data := Encode(cmd)
			if len(data) > MaxDataLen {
				t.Fatalf("payload %q exceeds %d bytes", data, MaxDataLen)
			}
			parsed, err := Parse(data)
			if err != nil {
				t.Fatal(err)
			}
			if parsed != cmd {
				t.Errorf("filter changed in transit: %#v -> %#v", cmd, parsed)
			}
		}
	}
}
