package attendance

import "context"

// Page is a top-level screen.
type Page string

const (
	PageLogin     Page = "login"
	PageRegister  Page = "register"
	PageDashboard Page = "dashboard"
)

// Panel is the role-specific section of the dashboard.
type Panel string

const (
	PanelNone    Panel = ""
	PanelStudent Panel = "student"
	PanelTeacher Panel = "teacher"
	PanelAdmin   Panel = "admin"
)

// PanelFor maps a role to its panel. Adding a Role without extending this
// switch leaves it without a panel.
func PanelFor(role Role) (Panel, bool) {
	switch role {
	case RoleStudent:
		return PanelStudent, true
	case RoleTeacher:
		return PanelTeacher, true
	case RoleAdmin:
		return PanelAdmin, true
	default:
		return PanelNone, false
	}
}

// ModalKind identifies the dialog on screen.
type ModalKind string

const (
	ModalCourseDetails    ModalKind = "course-details"
	ModalCourseStudents   ModalKind = "course-students"
	ModalCreateCourse     ModalKind = "create-course"
	ModalEditCourse       ModalKind = "edit-course"
	ModalCreateForm       ModalKind = "create-form"
	ModalSubmitAttendance ModalKind = "submit-attendance"
)

// Modal is the single dialog slot.
type Modal struct {
	Open     bool      `json:"open"`
	Kind     ModalKind `json:"kind,omitempty"`
	Title    string    `json:"title,omitempty"`
	Body     Fragment  `json:"body,omitempty"`
	CourseID int       `json:"course_id,omitempty"`
	FormID   int       `json:"form_id,omitempty"`
}

// NavbarIdentity is what the navigation bar shows for the signed-in user.
type NavbarIdentity struct {
	FullName  string `json:"full_name"`
	Role      Role   `json:"role"`
	RoleLabel string `json:"role_label"`
}

// ViewState is the visible UI. Exactly one page is shown; Panel is set only
// on the dashboard and always matches the session role.
type ViewState struct {
	Page          Page            `json:"page"`
	Panel         Panel           `json:"panel"`
	NavbarVisible bool            `json:"navbar_visible"`
	Navbar        *NavbarIdentity `json:"navbar,omitempty"`
	Modal         Modal           `json:"modal"`
}

// DashboardLoader populates a role panel.
type DashboardLoader interface {
	Load(ctx context.Context, user User)
}

// ViewRouter switches pages and panels.
type ViewRouter struct {
	state    ViewState
	session  *Session
	loader   DashboardLoader
	messages *Messages
}

// NewViewRouter starts on the login page.
func NewViewRouter(session *Session, loader DashboardLoader, messages *Messages) *ViewRouter {
	return &ViewRouter{
		state:    ViewState{Page: PageLogin},
		session:  session,
		loader:   loader,
		messages: normalizeMessages(messages),
	}
}

// State returns a copy of the view state.
func (v *ViewRouter) State() ViewState {
	state := v.state
	if state.Navbar != nil {
		navbar := *state.Navbar
		state.Navbar = &navbar
	}
	return state
}

// ShowPage hides every page and shows page. The navbar is shown only with the dashboard.
func (v *ViewRouter) ShowPage(page Page) {
	v.state.Page = page
	v.state.NavbarVisible = page == PageDashboard
	if page != PageDashboard {
		v.state.Panel = PanelNone
		v.state.Navbar = nil
		v.state.Modal = Modal{}
	}
}

// ShowDashboard shows the dashboard, refreshes the navbar and loads the
// panel for the session role. Without a known role no panel is shown.
func (v *ViewRouter) ShowDashboard(ctx context.Context) {
	v.ShowPage(PageDashboard)
	v.state.Panel = PanelNone
	user, ok := v.session.User()
	if !ok {
		v.state.Navbar = nil
		return
	}
	v.state.Navbar = &NavbarIdentity{
		FullName:  user.DisplayName(),
		Role:      user.Role,
		RoleLabel: v.messages.RoleLabel(user.Role),
	}
	panel, ok := PanelFor(user.Role)
	if !ok {
		return
	}
	v.state.Panel = panel
	if v.loader != nil {
		v.loader.Load(ctx, user)
	}
}

// OpenModal replaces the dialog.
func (v *ViewRouter) OpenModal(modal Modal) {
	modal.Open = true
	v.state.Modal = modal
}

// CloseModal hides the dialog.
func (v *ViewRouter) CloseModal() {
	v.state.Modal = Modal{}
}
