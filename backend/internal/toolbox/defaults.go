package toolbox

import "github.com/itchan-dev/filemsg/shared/domain"

var allGroups = []Group{GroupChannel, GroupPrivate, GroupLive, GroupDirect, GroupDirectMultiple}

// RegisterDefaults adds the actions every deployment ships with.
func RegisterDefaults(r *Registry) {
	r.Add("uploaded-files-list", ActionConfig{
		Id:     "uploaded-files-list",
		Icon:   "clip",
		Title:  "Files",
		Order:  1,
		Groups: allGroups,
	})
	r.Add("members-list", ActionConfig{
		Id:     "members-list",
		Icon:   "members",
		Title:  "Members",
		Order:  2,
		Groups: []Group{GroupChannel, GroupPrivate, GroupDirectMultiple},
	})
	r.Add("canned-responses", ActionConfig{
		Id:       "canned-responses",
		Icon:     "canned-response",
		Title:    "Canned_Responses",
		Order:    3,
		Groups:   []Group{GroupLive},
		Template: "CannedResponse",
	})
	// Hidden in live rooms, visitors upload through the widget.
	r.Add("upload-file", Hook(func(room *domain.Room) *ActionConfig {
		if room.Type == domain.RoomTypeLive {
			return nil
		}
		return &ActionConfig{
			Id:     "upload-file",
			Icon:   "upload",
			Title:  "Upload_file",
			Order:  0,
			Groups: allGroups,
			Hotkey: "u",
		}
	}))
}
