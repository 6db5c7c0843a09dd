package dto

import (
	"time"

	"github.com/noah-isme/kelas-go-api/internal/models"
)

// ClassroomCreateRequest is the payload to create a classroom.
type ClassroomCreateRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=255"`
	Subject string `json:"subject" validate:"omitempty,max=128"`
}

// ClassroomJoinRequest enrolls a student via an enrollment code.
type ClassroomJoinRequest struct {
	Code  string `json:"code" validate:"required,min=4,max=16"`
	Level string `json:"level" validate:"required,oneof=beginner intermediate advanced"`
}

// ClassroomResponse is returned to API clients when viewing classrooms.
type ClassroomResponse struct {
	ID          uint                      `json:"id"`
	Name        string                    `json:"name"`
	Subject     string                    `json:"subject,omitempty"`
	TeacherID   uint                      `json:"teacher_id"`
	Code        string                    `json:"code,omitempty"`
	Archived    bool                      `json:"archived"`
	MemberCount int                       `json:"member_count"`
	Members     []ClassroomMemberResponse `json:"members,omitempty"`
	CreatedAt   time.Time                 `json:"created_at"`
}

// ClassroomMemberResponse serializes a single enrollment.
type ClassroomMemberResponse struct {
	StudentID uint      `json:"student_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Level     string    `json:"level"`
	JoinedAt  time.Time `json:"joined_at"`
}

// NewClassroomResponse converts a classroom model into a DTO. The enrollment
// code is only included for the owning teacher.
func NewClassroomResponse(model models.Classroom, includeCode bool) ClassroomResponse {
	response := ClassroomResponse{
		ID:          model.ID,
		Name:        model.Name,
		Subject:     model.Subject,
		TeacherID:   model.TeacherID,
		Archived:    model.Archived,
		MemberCount: len(model.Members),
		CreatedAt:   model.CreatedAt,
	}

	if includeCode {
		response.Code = model.Code
	}

	if len(model.Members) > 0 {
		members := make([]ClassroomMemberResponse, 0, len(model.Members))
		for _, member := range model.Members {
			members = append(members, NewClassroomMemberResponse(member))
		}
		response.Members = members
	}

	return response
}

// NewClassroomMemberResponse converts a membership model into a DTO.
func NewClassroomMemberResponse(member models.ClassroomMember) ClassroomMemberResponse {
	return ClassroomMemberResponse{
		StudentID: member.StudentID,
		Name:      member.Student.Name,
		Email:     member.Student.Email,
		Level:     string(member.Level),
		JoinedAt:  member.JoinedAt,
	}
}

// NewClassroomResponseSlice converts classroom models into DTOs.
func NewClassroomResponseSlice(classrooms []models.Classroom, includeCode bool) []ClassroomResponse {
	responses := make([]ClassroomResponse, 0, len(classrooms))
	for _, classroom := range classrooms {
		responses = append(responses, NewClassroomResponse(classroom, includeCode))
	}
	return responses
}
