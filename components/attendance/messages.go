package attendance

import (
	"fmt"
	"strings"
)

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "en"

var defaultMessages = map[string]map[string]string{
	"network.error": {"default": "Network error, please try again later", "zh": "網路錯誤，請稍後再試"},

	"login.success.title":   {"default": "Login successful", "zh": "登入成功"},
	"login.success.message": {"default": "Welcome back, %s", "zh": "歡迎回來，%s"},
	"login.error.title":     {"default": "Login failed", "zh": "登入失敗"},
	"login.error.fallback":  {"default": "Please check your username and password", "zh": "請檢查用戶名和密碼"},

	"register.success.title":   {"default": "Registration successful", "zh": "註冊成功"},
	"register.success.message": {"default": "Please sign in with your new account", "zh": "請使用新帳號登入"},
	"register.error.title":     {"default": "Registration failed", "zh": "註冊失敗"},
	"register.error.fallback":  {"default": "Please check the information you entered", "zh": "請檢查輸入的資料"},

	"logout.success.title":   {"default": "Logged out", "zh": "已登出"},
	"logout.success.message": {"default": "You have been signed out", "zh": "您已成功登出"},
	"logout.error.title":     {"default": "Logout failed", "zh": "登出失敗"},

	"join.missing":         {"default": "Please enter a course code", "zh": "請輸入課程代碼"},
	"join.success.title":   {"default": "Joined course", "zh": "加入成功"},
	"join.success.message": {"default": "You joined the course", "zh": "已成功加入課程"},
	"join.error.title":     {"default": "Join failed", "zh": "加入失敗"},
	"join.error.fallback":  {"default": "Unable to join the course", "zh": "無法加入課程"},

	"leave.success.title":   {"default": "Left course", "zh": "退出成功"},
	"leave.success.message": {"default": "You left the course", "zh": "已退出課程"},
	"leave.error.title":     {"default": "Leave failed", "zh": "退出失敗"},
	"leave.error.fallback":  {"default": "Unable to leave the course", "zh": "無法退出課程"},

	"course.create.success.title":   {"default": "Course created", "zh": "建立成功"},
	"course.create.success.message": {"default": "Course %s was created", "zh": "課程 %s 已建立"},
	"course.create.error.title":     {"default": "Create failed", "zh": "建立失敗"},
	"course.create.error.fallback":  {"default": "Unable to create the course", "zh": "無法建立課程"},
	"course.update.success.title":   {"default": "Course updated", "zh": "更新成功"},
	"course.update.success.message": {"default": "Course %s was updated", "zh": "課程 %s 已更新"},
	"course.update.error.title":     {"default": "Update failed", "zh": "更新失敗"},
	"course.update.error.fallback":  {"default": "Unable to update the course", "zh": "無法更新課程"},
	"course.load.error.title":       {"default": "Load failed", "zh": "載入失敗"},
	"course.load.error.fallback":    {"default": "Unable to load course information", "zh": "無法載入課程資訊"},
	"students.error.fallback":       {"default": "Unable to load the student list", "zh": "無法載入學生列表"},

	"form.create.success.title":   {"default": "Form created", "zh": "建立成功"},
	"form.create.success.message": {"default": "Attendance form %s was created", "zh": "點名表單 %s 已建立"},
	"form.create.error.title":     {"default": "Create failed", "zh": "建立失敗"},
	"form.create.error.fallback":  {"default": "Unable to create the attendance form", "zh": "無法建立點名表單"},

	"submit.success.title":   {"default": "Attendance submitted", "zh": "提交成功"},
	"submit.success.message": {"default": "Your attendance has been recorded", "zh": "出席紀錄已送出"},
	"submit.error.title":     {"default": "Submit failed", "zh": "提交失敗"},
	"submit.error.fallback":  {"default": "Unable to submit attendance", "zh": "無法提交出席紀錄"},

	"dashboard.error.title":    {"default": "Load failed", "zh": "載入失敗"},
	"dashboard.error.fallback": {"default": "Unable to load dashboard data", "zh": "無法載入儀表板資料"},

	"role.student": {"default": "Student", "zh": "學生"},
	"role.teacher": {"default": "Teacher", "zh": "老師"},
	"role.admin":   {"default": "Administrator", "zh": "管理員"},

	"status.present": {"default": "Present", "zh": "出席"},
	"status.absent":  {"default": "Absent", "zh": "缺席"},
	"status.late":    {"default": "Late", "zh": "遲到"},
	"status.excused": {"default": "Excused", "zh": "請假"},

	"empty.courses.student":      {"default": "You have not joined any courses yet", "zh": "尚未加入任何課程"},
	"empty.courses.student.hint": {"default": "Ask your teacher for a join code", "zh": "請向老師索取課程代碼"},
	"empty.courses.teacher":      {"default": "You have not created any courses yet", "zh": "尚未建立任何課程"},
	"empty.courses.teacher.hint": {"default": "Create your first course to get started", "zh": "建立第一個課程開始使用"},
	"empty.forms":                {"default": "No pending attendance forms", "zh": "目前沒有待填寫的點名表單"},
	"empty.forms.hint":           {"default": "You are all caught up", "zh": "所有表單都已完成"},
	"empty.students":             {"default": "No students have joined this course yet", "zh": "此課程尚無學生加入"},

	"chart.student.title":  {"default": "My attendance", "zh": "我的出席狀況"},
	"chart.daily.title":    {"default": "Daily attendance", "zh": "每日出席趨勢"},
	"chart.status.title":   {"default": "Status distribution", "zh": "出席狀態分布"},
	"chart.students.title": {"default": "Attendance by student", "zh": "學生出席統計"},
	"chart.overview.title": {"default": "Platform overview", "zh": "系統總覽"},
	"overview.users":       {"default": "Users", "zh": "用戶"},
	"overview.courses":     {"default": "Courses", "zh": "課程"},
	"overview.forms":       {"default": "Forms", "zh": "表單"},
	"overview.records":     {"default": "Records", "zh": "紀錄"},
	"overview.series":      {"default": "Total", "zh": "總數"},

	"modal.course.details":    {"default": "Course details", "zh": "課程詳情"},
	"modal.course.students":   {"default": "Course students", "zh": "課程學生"},
	"modal.course.create":     {"default": "Create course", "zh": "建立課程"},
	"modal.course.edit":       {"default": "Edit course", "zh": "編輯課程"},
	"modal.form.create":       {"default": "Create attendance form", "zh": "建立點名表單"},
	"modal.attendance.submit": {"default": "Submit attendance", "zh": "填寫出席"},

	"label.code":        {"default": "Code", "zh": "課程代碼"},
	"label.name":        {"default": "Name", "zh": "名稱"},
	"label.teacher":     {"default": "Teacher", "zh": "老師"},
	"label.unknown":     {"default": "Unknown", "zh": "未知"},
	"label.join_code":   {"default": "Join code", "zh": "加入代碼"},
	"label.students":    {"default": "Students", "zh": "學生人數"},
	"label.date":        {"default": "Date", "zh": "日期"},
	"label.time":        {"default": "Time", "zh": "時間"},
	"label.start":       {"default": "Start", "zh": "開始時間"},
	"label.end":         {"default": "End", "zh": "結束時間"},
	"label.course":      {"default": "Course", "zh": "課程"},
	"label.title":       {"default": "Title", "zh": "標題"},
	"label.description": {"default": "Description", "zh": "描述"},
	"label.student_id":  {"default": "Student ID", "zh": "學號"},
	"label.email":       {"default": "Email", "zh": "信箱"},
	"label.enrolled_at": {"default": "Joined", "zh": "加入時間"},
	"label.status":      {"default": "Status", "zh": "狀態"},
	"label.notes":       {"default": "Notes", "zh": "備註"},
	"label.total":       {"default": "Total", "zh": "總計"},

	"action.view":     {"default": "View", "zh": "查看"},
	"action.leave":    {"default": "Leave", "zh": "退出"},
	"action.edit":     {"default": "Edit", "zh": "編輯"},
	"action.students": {"default": "Students", "zh": "學生列表"},
	"action.fill":     {"default": "Fill in", "zh": "填寫"},
	"action.save":     {"default": "Save", "zh": "儲存"},
	"action.create":   {"default": "Create", "zh": "建立"},
	"action.submit":   {"default": "Submit", "zh": "提交"},

	"console.title":       {"default": "Attendance", "zh": "點名系統"},
	"console.login":       {"default": "Sign in", "zh": "登入"},
	"console.register":    {"default": "Create account", "zh": "註冊帳號"},
	"console.logout":      {"default": "Sign out", "zh": "登出"},
	"console.theme":       {"default": "Toggle theme", "zh": "切換主題"},
	"console.close":       {"default": "Close", "zh": "關閉"},
	"console.join":        {"default": "Join", "zh": "加入"},
	"console.new_course":  {"default": "New course", "zh": "新增課程"},
	"console.new_form":    {"default": "New attendance form", "zh": "新增點名表"},
	"console.username":    {"default": "Username", "zh": "帳號"},
	"console.password":    {"default": "Password", "zh": "密碼"},
	"console.full_name":   {"default": "Full name", "zh": "姓名"},
	"console.role":        {"default": "Role", "zh": "身分"},
	"console.my_courses":  {"default": "My courses", "zh": "我的課程"},
	"console.pending":     {"default": "Pending attendance", "zh": "待填寫點名"},
	"console.analytics":   {"default": "Analytics", "zh": "出席統計"},
	"console.to_login":    {"default": "Already registered? Sign in", "zh": "已有帳號？登入"},
	"console.to_register": {"default": "No account? Register", "zh": "還沒有帳號？註冊"},
}

// Messages resolves user-visible strings for one locale.
type Messages struct {
	locale  string
	entries map[string]map[string]string
}

// NewMessages builds a catalogue for locale merged with overrides (key -> locale -> text).
func NewMessages(locale string, overrides map[string]map[string]string) *Messages {
	entries := make(map[string]map[string]string, len(defaultMessages)+len(overrides))
	for key, values := range defaultMessages {
		entries[key] = normalizeLocaleMap(values)
	}
	for key, values := range overrides {
		merged := entries[key]
		if merged == nil {
			merged = map[string]string{}
		}
		for loc, value := range normalizeLocaleMap(values) {
			merged[loc] = value
		}
		entries[key] = merged
	}
	if strings.TrimSpace(locale) == "" {
		locale = DefaultLocale
	}
	return &Messages{locale: normalizeLocale(locale), entries: entries}
}

// Locale returns the normalized locale.
func (m *Messages) Locale() string { return m.locale }

// Text returns the localized message or the key itself.
func (m *Messages) Text(key string) string {
	if m == nil {
		return key
	}
	return ResolveLocalizedValue(m.entries[key], m.locale, key)
}

// Textf formats the localized message with args.
func (m *Messages) Textf(key string, args ...any) string {
	return fmt.Sprintf(m.Text(key), args...)
}

// Catalogue resolves every known key for the locale. Dots in keys become
// underscores so templates can address them as plain attributes.
func (m *Messages) Catalogue() map[string]string {
	m = normalizeMessages(m)
	out := make(map[string]string, len(m.entries))
	for key := range m.entries {
		out[strings.ReplaceAll(key, ".", "_")] = m.Text(key)
	}
	return out
}

// RoleLabel returns the display name for a role.
func (m *Messages) RoleLabel(role Role) string {
	if !role.Valid() {
		return string(role)
	}
	return m.Text("role." + string(role))
}

// StatusLabel returns the display name for a status.
func (m *Messages) StatusLabel(status Status) string {
	return m.Text("status." + string(status))
}

func normalizeMessages(m *Messages) *Messages {
	if m == nil {
		return NewMessages(DefaultLocale, nil)
	}
	return m
}

// ResolveLocalizedValue selects the best translation for the provided locale and falls back to the supplied value.
// Language-region pairs (`zh-tw`) fall back to their base language (`zh`) and then to `default`.
func ResolveLocalizedValue(values map[string]string, locale, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	for _, candidate := range localeCandidates(locale) {
		if value, ok := values[candidate]; ok && value != "" {
			return value
		}
	}
	return fallback
}

func normalizeLocaleMap(values map[string]string) map[string]string {
	normalized := make(map[string]string, len(values))
	for key, value := range values {
		key = normalizeLocale(key)
		if key == "" || value == "" {
			continue
		}
		normalized[key] = value
	}
	return normalized
}

func localeCandidates(locale string) []string {
	locale = normalizeLocale(locale)
	if locale == "" {
		return []string{"default"}
	}
	candidates := []string{locale}
	if idx := strings.IndexAny(locale, "-_"); idx > 0 {
		candidates = append(candidates, locale[:idx])
	}
	return append(candidates, "default")
}

func normalizeLocale(locale string) string {
	return strings.TrimSpace(strings.ToLower(locale))
}
