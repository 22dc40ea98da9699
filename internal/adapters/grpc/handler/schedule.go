package handler

import (
	"context"
	"time"

	v1 "github.com/ogurasousui/timeclock-grpc/internal/adapters/grpc/timeclockv1"
	"github.com/ogurasousui/timeclock-grpc/internal/core/schedule"
)

// ScheduleGrpcHandler は ScheduleService の gRPC 実装です。
type ScheduleGrpcHandler struct {
	svc schedule.UseCase
	v1.UnimplementedScheduleServiceServer
}

// NewScheduleGrpcHandler は ScheduleGrpcHandler を生成します。
func NewScheduleGrpcHandler(svc schedule.UseCase) *ScheduleGrpcHandler {
	return &ScheduleGrpcHandler{svc: svc}
}

// GetSchedule は部署の週次スケジュールを返します。UserID を省略するとアクター本人のシフトです。
func (h *ScheduleGrpcHandler) GetSchedule(ctx context.Context, req *v1.GetScheduleRequest) (*v1.ScheduleResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	weekStart, err := parseDate(req.WeekStart)
	if err != nil {
		return nil, err
	}

	userID := req.UserID
	if userID == "" {
		userID = actorID
	}

	found, err := h.svc.GetSchedule(ctx, schedule.GetScheduleInput{
		ActorID:      actorID,
		UserID:       userID,
		DepartmentID: req.DepartmentID,
		WeekStart:    weekStart,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &v1.ScheduleResponse{Schedule: toWireSchedule(found)}, nil
}

// DetectConflicts は渡されたスケジュールの部署間の衝突を返します。
func (h *ScheduleGrpcHandler) DetectConflicts(ctx context.Context, req *v1.DetectConflictsRequest) (*v1.ConflictResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	if _, err := requireActor(ctx); err != nil {
		return nil, err
	}

	schedules := make([]*schedule.DepartmentSchedule, 0, len(req.Schedules))
	for _, s := range req.Schedules {
		weekStart, err := parseDate(s.WeekStart)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, fromWireSchedule(s, weekStart))
	}

	result, err := h.svc.DetectConflicts(ctx, schedule.DetectConflictsInput{Schedules: schedules})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toWireConflicts(result), nil
}

// CheckUserConflicts はユーザーの所属部署をまたいだ衝突を返します。
func (h *ScheduleGrpcHandler) CheckUserConflicts(ctx context.Context, req *v1.CheckUserConflictsRequest) (*v1.ConflictResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	weekStart, err := parseDate(req.WeekStart)
	if err != nil {
		return nil, err
	}

	userID := req.UserID
	if userID == "" {
		userID = actorID
	}

	result, err := h.svc.CheckUserConflicts(ctx, schedule.CheckUserConflictsInput{
		ActorID:   actorID,
		UserID:    userID,
		WeekStart: weekStart,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toWireConflicts(result), nil
}

func toWireSchedule(s *schedule.DepartmentSchedule) *v1.DepartmentSchedule {
	if s == nil {
		return nil
	}
	shifts := make([]v1.WorkShift, 0, len(s.Shifts))
	for _, shift := range s.Shifts {
		shifts = append(shifts, toWireShift(shift))
	}
	return &v1.DepartmentSchedule{
		ID:             s.ID,
		DepartmentID:   s.DepartmentID,
		DepartmentName: s.DepartmentName,
		WeekStart:      s.WeekStart.Format(time.DateOnly),
		Shifts:         shifts,
	}
}

func toWireShift(s schedule.WorkShift) v1.WorkShift {
	return v1.WorkShift{
		ID:        s.ID,
		UserID:    s.UserID,
		DayOfWeek: int32(s.DayOfWeek),
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
	}
}

func fromWireSchedule(s v1.DepartmentSchedule, weekStart time.Time) *schedule.DepartmentSchedule {
	shifts := make([]schedule.WorkShift, 0, len(s.Shifts))
	for _, shift := range s.Shifts {
		shifts = append(shifts, schedule.WorkShift{
			ID:         shift.ID,
			ScheduleID: s.ID,
			UserID:     shift.UserID,
			DayOfWeek:  int(shift.DayOfWeek),
			StartTime:  shift.StartTime.UTC(),
			EndTime:    shift.EndTime.UTC(),
		})
	}
	return &schedule.DepartmentSchedule{
		ID:             s.ID,
		DepartmentID:   s.DepartmentID,
		DepartmentName: s.DepartmentName,
		WeekStart:      weekStart,
		Shifts:         shifts,
	}
}

func toWireConflicts(result *schedule.Result) *v1.ConflictResponse {
	conflicts := make([]*v1.Conflict, 0, len(result.Conflicts))
	for _, c := range result.Conflicts {
		conflicts = append(conflicts, &v1.Conflict{
			First:  toWireShiftRef(c.First),
			Second: toWireShiftRef(c.Second),
		})
	}
	return &v1.ConflictResponse{HasConflict: result.HasConflict, Conflicts: conflicts}
}

func toWireShiftRef(ref schedule.ShiftRef) v1.ShiftRef {
	return v1.ShiftRef{
		DepartmentID:   ref.DepartmentID,
		DepartmentName: ref.DepartmentName,
		Shift:          toWireShift(ref.Shift),
	}
}
