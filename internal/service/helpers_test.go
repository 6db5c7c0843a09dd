package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kelas-go-api/internal/dto"
	"github.com/noah-isme/kelas-go-api/internal/models"
	"github.com/noah-isme/kelas-go-api/internal/repository"
	"github.com/noah-isme/kelas-go-api/pkg/meeting"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type memoryClassroomRepo struct {
	classrooms map[uint]models.Classroom
	members    []models.ClassroomMember
	nextID     uint
}

func newMemoryClassroomRepo() *memoryClassroomRepo {
	return &memoryClassroomRepo{
		classrooms: make(map[uint]models.Classroom),
		nextID:     1,
	}
}

func (m *memoryClassroomRepo) Create(ctx context.Context, classroom *models.Classroom) error {
	for _, existing := range m.classrooms {
		if existing.Code == classroom.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	classroom.ID = m.nextID
	classroom.CreatedAt = time.Now()
	m.classrooms[m.nextID] = *classroom
	m.nextID++
	return nil
}

func (m *memoryClassroomRepo) GetByID(ctx context.Context, id uint) (models.Classroom, error) {
	classroom, ok := m.classrooms[id]
	if !ok {
		return models.Classroom{}, gorm.ErrRecordNotFound
	}
	classroom.Members = m.membersOf(id)
	return classroom, nil
}

func (m *memoryClassroomRepo) GetByCode(ctx context.Context, code string) (models.Classroom, error) {
	for _, classroom := range m.classrooms {
		if classroom.Code == code {
			classroom.Members = m.membersOf(classroom.ID)
			return classroom, nil
		}
	}
	return models.Classroom{}, gorm.ErrRecordNotFound
}

func (m *memoryClassroomRepo) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Classroom, error) {
	results := make([]models.Classroom, 0)
	for _, classroom := range m.classrooms {
		if classroom.TeacherID == teacherID {
			classroom.Members = m.membersOf(classroom.ID)
			results = append(results, classroom)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryClassroomRepo) ListByStudent(ctx context.Context, studentID uint) ([]models.Classroom, error) {
	results := make([]models.Classroom, 0)
	for _, member := range m.members {
		if member.StudentID != studentID {
			continue
		}
		if classroom, ok := m.classrooms[member.ClassroomID]; ok {
			classroom.Members = m.membersOf(classroom.ID)
			results = append(results, classroom)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryClassroomRepo) Update(ctx context.Context, classroom *models.Classroom) error {
	if _, ok := m.classrooms[classroom.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.classrooms[classroom.ID] = *classroom
	return nil
}

func (m *memoryClassroomRepo) AddMember(ctx context.Context, member *models.ClassroomMember) error {
	for _, existing := range m.members {
		if existing.ClassroomID == member.ClassroomID && existing.StudentID == member.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	member.ID = uint(len(m.members) + 1)
	m.members = append(m.members, *member)
	return nil
}

func (m *memoryClassroomRepo) GetMember(ctx context.Context, classroomID, studentID uint) (models.ClassroomMember, error) {
	for _, member := range m.members {
		if member.ClassroomID == classroomID && member.StudentID == studentID {
			return member, nil
		}
	}
	return models.ClassroomMember{}, gorm.ErrRecordNotFound
}

func (m *memoryClassroomRepo) ListMembers(ctx context.Context, classroomID uint) ([]models.ClassroomMember, error) {
	return m.membersOf(classroomID), nil
}

func (m *memoryClassroomRepo) RemoveMember(ctx context.Context, classroomID, studentID uint) error {
	for i, member := range m.members {
		if member.ClassroomID == classroomID && member.StudentID == studentID {
			m.members = append(m.members[:i], m.members[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryClassroomRepo) membersOf(classroomID uint) []models.ClassroomMember {
	results := make([]models.ClassroomMember, 0)
	for _, member := range m.members {
		if member.ClassroomID == classroomID {
			results = append(results, member)
		}
	}
	return results
}

type memoryAssignmentRepo struct {
	assignments map[uint]models.Assignment
	nextID      uint
}

func newMemoryAssignmentRepo() *memoryAssignmentRepo {
	return &memoryAssignmentRepo{
		assignments: make(map[uint]models.Assignment),
		nextID:      1,
	}
}

func (m *memoryAssignmentRepo) List(ctx context.Context, filter repository.AssignmentFilter) ([]models.Assignment, error) {
	results := make([]models.Assignment, 0)
	for _, assignment := range m.assignments {
		if filter.ClassroomID != nil && assignment.ClassroomID != *filter.ClassroomID {
			continue
		}
		if filter.Type != nil && assignment.Type != *filter.Type {
			continue
		}
		if filter.PublishedOnly && !assignment.Published {
			continue
		}
		results = append(results, assignment)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].DueDate.Before(results[j].DueDate) })
	return results, nil
}

func (m *memoryAssignmentRepo) ListByClassrooms(ctx context.Context, classroomIDs []uint) ([]models.Assignment, error) {
	wanted := make(map[uint]struct{}, len(classroomIDs))
	for _, id := range classroomIDs {
		wanted[id] = struct{}{}
	}
	results := make([]models.Assignment, 0)
	for _, assignment := range m.assignments {
		if _, ok := wanted[assignment.ClassroomID]; ok {
			results = append(results, assignment)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].DueDate.Before(results[j].DueDate) })
	return results, nil
}

func (m *memoryAssignmentRepo) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, ok := m.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (m *memoryAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	assignment.ID = m.nextID
	assignment.CreatedAt = time.Now()
	m.assignments[m.nextID] = *assignment
	m.nextID++
	return nil
}

func (m *memoryAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	if _, ok := m.assignments[assignment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.assignments[assignment.ID] = *assignment
	return nil
}

func (m *memoryAssignmentRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.assignments, id)
	return nil
}

type memorySubmissionRepo struct {
	submissions map[uint]models.Submission
	assignments *memoryAssignmentRepo
	nextID      uint
}

func newMemorySubmissionRepo(assignments *memoryAssignmentRepo) *memorySubmissionRepo {
	return &memorySubmissionRepo{
		submissions: make(map[uint]models.Submission),
		assignments: assignments,
		nextID:      1,
	}
}

func (m *memorySubmissionRepo) List(ctx context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	results := make([]models.Submission, 0)
	for _, submission := range m.submissions {
		if filter.AssignmentID != nil && submission.AssignmentID != *filter.AssignmentID {
			continue
		}
		if filter.StudentID != nil && submission.StudentID != *filter.StudentID {
			continue
		}
		if filter.Status != nil && submission.Status != *filter.Status {
			continue
		}
		results = append(results, m.preload(submission))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memorySubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	submission, ok := m.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return m.preload(submission), nil
}

func (m *memorySubmissionRepo) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Submission, error) {
	for _, submission := range m.submissions {
		if submission.AssignmentID == assignmentID && submission.StudentID == studentID {
			return m.preload(submission), nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (m *memorySubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	for _, existing := range m.submissions {
		if existing.AssignmentID == submission.AssignmentID && existing.StudentID == submission.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	submission.ID = m.nextID
	submission.CreatedAt = time.Now()
	m.submissions[m.nextID] = *submission
	m.nextID++
	return nil
}

func (m *memorySubmissionRepo) Update(ctx context.Context, submission *models.Submission) error {
	if _, ok := m.submissions[submission.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.submissions[submission.ID] = *submission
	return nil
}

func (m *memorySubmissionRepo) preload(submission models.Submission) models.Submission {
	if m.assignments != nil {
		if assignment, ok := m.assignments.assignments[submission.AssignmentID]; ok {
			submission.Assignment = assignment
		}
	}
	return submission
}

type stubUploadService struct {
	uploads int
}

func (s *stubUploadService) Upload(ctx context.Context, file *multipart.FileHeader, userID *uint) (dto.UploadResponse, error) {
	s.uploads++
	return dto.UploadResponse{URL: "https://cdn.example.com/" + file.Filename}, nil
}

type capturingNotifier struct {
	mu        sync.Mutex
	published []dto.NotificationCreateRequest
}

func (c *capturingNotifier) Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, payload)
	return dto.NotificationResponse{UserID: payload.UserID, Type: payload.Type, Message: payload.Message}, nil
}

func (c *capturingNotifier) List(ctx context.Context, userID uint, limit, offset int) ([]dto.NotificationResponse, error) {
	return nil, nil
}

func (c *capturingNotifier) MarkRead(ctx context.Context, id, userID uint) (dto.NotificationResponse, error) {
	return dto.NotificationResponse{}, nil
}

func (c *capturingNotifier) Subscribe(userID uint) (<-chan dto.NotificationResponse, func()) {
	ch := make(chan dto.NotificationResponse)
	return ch, func() {}
}

func (c *capturingNotifier) Start(ctx context.Context) {}

func (c *capturingNotifier) byType(kind string) []dto.NotificationCreateRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	results := make([]dto.NotificationCreateRequest, 0)
	for _, item := range c.published {
		if item.Type == kind {
			results = append(results, item)
		}
	}
	return results
}

type memoryUserRepo struct {
	users  map[uint]models.User
	nextID uint
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uint]models.User), nextID: 1}
}

func (m *memoryUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.users[m.nextID] = *user
	m.nextID++
	return nil
}

func (m *memoryUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (m *memoryUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.users[user.ID] = *user
	return nil
}

type memoryDPPRepo struct {
	dpps   map[uint]models.DPP
	nextID uint
}

func newMemoryDPPRepo() *memoryDPPRepo {
	return &memoryDPPRepo{dpps: make(map[uint]models.DPP), nextID: 1}
}

func (m *memoryDPPRepo) List(ctx context.Context, classroomID uint, publishedOnly bool) ([]models.DPP, error) {
	results := make([]models.DPP, 0)
	for _, dpp := range m.dpps {
		if dpp.ClassroomID != classroomID {
			continue
		}
		if publishedOnly && !dpp.Published {
			continue
		}
		results = append(results, dpp)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ScheduledFor.After(results[j].ScheduledFor) })
	return results, nil
}

func (m *memoryDPPRepo) ListByClassrooms(ctx context.Context, classroomIDs []uint) ([]models.DPP, error) {
	wanted := make(map[uint]struct{}, len(classroomIDs))
	for _, id := range classroomIDs {
		wanted[id] = struct{}{}
	}
	results := make([]models.DPP, 0)
	for _, dpp := range m.dpps {
		if _, ok := wanted[dpp.ClassroomID]; ok {
			results = append(results, dpp)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ScheduledFor.After(results[j].ScheduledFor) })
	return results, nil
}

func (m *memoryDPPRepo) GetByID(ctx context.Context, id uint) (models.DPP, error) {
	dpp, ok := m.dpps[id]
	if !ok {
		return models.DPP{}, gorm.ErrRecordNotFound
	}
	return dpp, nil
}

func (m *memoryDPPRepo) Create(ctx context.Context, dpp *models.DPP) error {
	dpp.ID = m.nextID
	dpp.CreatedAt = time.Now()
	m.dpps[m.nextID] = *dpp
	m.nextID++
	return nil
}

func (m *memoryDPPRepo) Update(ctx context.Context, dpp *models.DPP) error {
	if _, ok := m.dpps[dpp.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.dpps[dpp.ID] = *dpp
	return nil
}

func (m *memoryDPPRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.dpps[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.dpps, id)
	return nil
}

type memoryVideoClassRepo struct {
	classes map[uint]models.VideoClass
	nextID  uint
}

func newMemoryVideoClassRepo() *memoryVideoClassRepo {
	return &memoryVideoClassRepo{classes: make(map[uint]models.VideoClass), nextID: 1}
}

func (m *memoryVideoClassRepo) ListByClassroom(ctx context.Context, classroomID uint) ([]models.VideoClass, error) {
	results := make([]models.VideoClass, 0)
	for _, class := range m.classes {
		if class.ClassroomID == classroomID {
			results = append(results, class)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ScheduledStart.Before(results[j].ScheduledStart) })
	return results, nil
}

func (m *memoryVideoClassRepo) ListByClassrooms(ctx context.Context, classroomIDs []uint) ([]models.VideoClass, error) {
	wanted := make(map[uint]struct{}, len(classroomIDs))
	for _, id := range classroomIDs {
		wanted[id] = struct{}{}
	}
	results := make([]models.VideoClass, 0)
	for _, class := range m.classes {
		if _, ok := wanted[class.ClassroomID]; ok {
			results = append(results, class)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ScheduledStart.Before(results[j].ScheduledStart) })
	return results, nil
}

func (m *memoryVideoClassRepo) ListBetween(ctx context.Context, classroomIDs []uint, from, to time.Time) ([]models.VideoClass, error) {
	classes, err := m.ListByClassrooms(ctx, classroomIDs)
	if err != nil {
		return nil, err
	}
	results := make([]models.VideoClass, 0)
	for _, class := range classes {
		if class.ScheduledStart.Before(from) || !class.ScheduledStart.Before(to) {
			continue
		}
		results = append(results, class)
	}
	return results, nil
}

func (m *memoryVideoClassRepo) GetByID(ctx context.Context, id uint) (models.VideoClass, error) {
	class, ok := m.classes[id]
	if !ok {
		return models.VideoClass{}, gorm.ErrRecordNotFound
	}
	return class, nil
}

func (m *memoryVideoClassRepo) Create(ctx context.Context, class *models.VideoClass) error {
	class.ID = m.nextID
	class.CreatedAt = time.Now()
	m.classes[m.nextID] = *class
	m.nextID++
	return nil
}

func (m *memoryVideoClassRepo) Update(ctx context.Context, class *models.VideoClass) error {
	if _, ok := m.classes[class.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.classes[class.ID] = *class
	return nil
}

type memoryAttendanceRepo struct {
	records map[uint]models.Attendance
	nextID  uint
}

func newMemoryAttendanceRepo() *memoryAttendanceRepo {
	return &memoryAttendanceRepo{records: make(map[uint]models.Attendance), nextID: 1}
}

func (m *memoryAttendanceRepo) GetByClassAndStudent(ctx context.Context, videoClassID, studentID uint) (models.Attendance, error) {
	for _, record := range m.records {
		if record.VideoClassID == videoClassID && record.StudentID == studentID {
			return record, nil
		}
	}
	return models.Attendance{}, gorm.ErrRecordNotFound
}

func (m *memoryAttendanceRepo) ListByClass(ctx context.Context, videoClassID uint) ([]models.Attendance, error) {
	results := make([]models.Attendance, 0)
	for _, record := range m.records {
		if record.VideoClassID == videoClassID {
			results = append(results, record)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryAttendanceRepo) ListByStudent(ctx context.Context, studentID uint) ([]models.Attendance, error) {
	results := make([]models.Attendance, 0)
	for _, record := range m.records {
		if record.StudentID == studentID {
			results = append(results, record)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryAttendanceRepo) ListByClasses(ctx context.Context, videoClassIDs []uint) ([]models.Attendance, error) {
	wanted := make(map[uint]struct{}, len(videoClassIDs))
	for _, id := range videoClassIDs {
		wanted[id] = struct{}{}
	}
	results := make([]models.Attendance, 0)
	for _, record := range m.records {
		if _, ok := wanted[record.VideoClassID]; ok {
			results = append(results, record)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryAttendanceRepo) Create(ctx context.Context, record *models.Attendance) error {
	for _, existing := range m.records {
		if existing.VideoClassID == record.VideoClassID && existing.StudentID == record.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	record.ID = m.nextID
	record.CreatedAt = time.Now()
	m.records[m.nextID] = *record
	m.nextID++
	return nil
}

func (m *memoryAttendanceRepo) Update(ctx context.Context, record *models.Attendance) error {
	if _, ok := m.records[record.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.records[record.ID] = *record
	return nil
}

type memoryPostRepo struct {
	posts    map[uint]models.Post
	comments []models.Comment
	nextID   uint
}

func newMemoryPostRepo() *memoryPostRepo {
	return &memoryPostRepo{posts: make(map[uint]models.Post), nextID: 1}
}

func (m *memoryPostRepo) ListByClassroom(ctx context.Context, classroomID uint, limit, offset int) ([]models.Post, error) {
	results := make([]models.Post, 0)
	for _, post := range m.posts {
		if post.ClassroomID == classroomID {
			results = append(results, post)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID > results[j].ID })
	if offset >= len(results) {
		return []models.Post{}, nil
	}
	results = results[offset:]
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

func (m *memoryPostRepo) GetByID(ctx context.Context, id uint) (models.Post, error) {
	post, ok := m.posts[id]
	if !ok {
		return models.Post{}, gorm.ErrRecordNotFound
	}
	return post, nil
}

func (m *memoryPostRepo) GetWithComments(ctx context.Context, id uint) (models.Post, error) {
	post, err := m.GetByID(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	for _, comment := range m.comments {
		if comment.PostID == id {
			post.Comments = append(post.Comments, comment)
		}
	}
	return post, nil
}

func (m *memoryPostRepo) Create(ctx context.Context, post *models.Post) error {
	post.ID = m.nextID
	post.CreatedAt = time.Now()
	m.posts[m.nextID] = *post
	m.nextID++
	return nil
}

func (m *memoryPostRepo) Update(ctx context.Context, post *models.Post) error {
	if _, ok := m.posts[post.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.posts[post.ID] = *post
	return nil
}

func (m *memoryPostRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.posts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *memoryPostRepo) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = uint(len(m.comments) + 1)
	comment.CreatedAt = time.Now()
	m.comments = append(m.comments, *comment)
	return nil
}

func (m *memoryPostRepo) ListComments(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, error) {
	results := make([]models.Comment, 0)
	for _, comment := range m.comments {
		if comment.PostID == postID {
			results = append(results, comment)
		}
	}
	if offset >= len(results) {
		return []models.Comment{}, nil
	}
	results = results[offset:]
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

type memoryNotificationRepo struct {
	notifications map[uint]models.Notification
	nextID        uint
}

func newMemoryNotificationRepo() *memoryNotificationRepo {
	return &memoryNotificationRepo{notifications: make(map[uint]models.Notification), nextID: 1}
}

func (m *memoryNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	notification.ID = m.nextID
	notification.CreatedAt = time.Now()
	m.notifications[m.nextID] = *notification
	m.nextID++
	return nil
}

func (m *memoryNotificationRepo) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	results := make([]models.Notification, 0)
	for _, notification := range m.notifications {
		if notification.UserID == userID {
			results = append(results, notification)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID > results[j].ID })
	if offset >= len(results) {
		return []models.Notification{}, nil
	}
	results = results[offset:]
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

func (m *memoryNotificationRepo) MarkRead(ctx context.Context, id, userID uint) (models.Notification, error) {
	notification, ok := m.notifications[id]
	if !ok || notification.UserID != userID {
		return models.Notification{}, gorm.ErrRecordNotFound
	}
	notification.Read = true
	m.notifications[id] = notification
	return notification, nil
}

func (m *memoryNotificationRepo) FindByID(ctx context.Context, id uint) (models.Notification, error) {
	notification, ok := m.notifications[id]
	if !ok {
		return models.Notification{}, gorm.ErrRecordNotFound
	}
	return notification, nil
}

type memoryUploadRepo struct {
	records []models.UploadRecord
}

func (m *memoryUploadRepo) Create(ctx context.Context, record *models.UploadRecord) error {
	record.ID = uint(len(m.records) + 1)
	record.CreatedAt = time.Now()
	m.records = append(m.records, *record)
	return nil
}

type stubMeetingProvider struct {
	rooms int
}

func (s *stubMeetingProvider) CreateRoom(ctx context.Context, title string) (meeting.Room, error) {
	s.rooms++
	return meeting.Room{ID: fmt.Sprintf("room-%d", s.rooms), URL: fmt.Sprintf("https://meet.example.com/room-%d", s.rooms)}, nil
}
