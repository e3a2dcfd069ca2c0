// Package roles applies at-most-one-of-N role semantics for the
// self-assignment menus. Each category (major, year) is independent:
// selecting in one never touches roles from the other.
package roles

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

var ErrRoleNotFound = errors.New("role not found in guild")

// Major and Year are the two selectable categories. The labels double
// as guild role names.
var (
	MajorLabels = []string{
		"Biology",
		"Biomedical Engineering",
		"Chemistry",
		"Computer Engineering",
		"Computer Science",
		"Electrical Engineering",
		"Mechanical Engineering",
	}
	YearLabels = []string{
		"Freshman",
		"Sophomore",
		"Junior",
		"Senior",
		"Grad",
		"Alumni",
	}
)

// Assignment is the computed mutation for one selection: which held
// roles to shed and which role to add.
type Assignment struct {
	AddRoleID   string
	AddRoleName string
	RemoveIDs   []string
}

// Plan resolves a chosen label against the guild's roles and lists every
// held role from the same category for removal. Pure; the caller applies
// the result through the session.
func Plan(guildRoles []*discordgo.Role, memberRoleIDs []string, chosen string, category []string) (Assignment, error) {
	var target *discordgo.Role
	for _, role := range guildRoles {
		if role != nil && role.Name == chosen {
			target = role
			break
		}
	}
	if target == nil {
		return Assignment{}, ErrRoleNotFound
	}

	categorySet := make(map[string]struct{}, len(category))
	for _, label := range category {
		categorySet[label] = struct{}{}
	}
	byID := make(map[string]*discordgo.Role, len(guildRoles))
	for _, role := range guildRoles {
		if role != nil {
			byID[role.ID] = role
		}
	}

	assignment := Assignment{AddRoleID: target.ID, AddRoleName: target.Name}
	for _, roleID := range memberRoleIDs {
		role := byID[roleID]
		if role == nil {
			continue
		}
		if _, ok := categorySet[role.Name]; ok {
			assignment.RemoveIDs = append(assignment.RemoveIDs, role.ID)
		}
	}
	return assignment, nil
}

// RoleManager is the slice of the Discord session the service needs.
type RoleManager interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

type Service struct {
	manager RoleManager
}

func NewService(manager RoleManager) *Service {
	return &Service{manager: manager}
}

// Assign removes every held role from the category and adds the chosen
// one, returning the applied role name for the confirmation notice.
func (s *Service) Assign(guildID, userID string, guildRoles []*discordgo.Role, memberRoleIDs []string, chosen string, category []string) (string, error) {
	assignment, err := Plan(guildRoles, memberRoleIDs, chosen, category)
	if err != nil {
		return "", err
	}

	for _, roleID := range assignment.RemoveIDs {
		if err := s.manager.GuildMemberRoleRemove(guildID, userID, roleID); err != nil {
			return "", err
		}
	}
	if err := s.manager.GuildMemberRoleAdd(guildID, userID, assignment.AddRoleID); err != nil {
		return "", err
	}
	return assignment.AddRoleName, nil
}
