package handler

import (
	"context"
	"fmt"

	v1 "github.com/ogurasousui/timeclock-grpc/internal/adapters/grpc/timeclockv1"
	"github.com/ogurasousui/timeclock-grpc/internal/core/timeentry"
)

// TimeEntryGrpcHandler は TimeEntryService の gRPC 実装です。打刻は常にアクター本人に対して行います。
type TimeEntryGrpcHandler struct {
	svc timeentry.UseCase
	v1.UnimplementedTimeEntryServiceServer
}

// NewTimeEntryGrpcHandler は TimeEntryGrpcHandler を生成します。
func NewTimeEntryGrpcHandler(svc timeentry.UseCase) *TimeEntryGrpcHandler {
	return &TimeEntryGrpcHandler{svc: svc}
}

// ClockIn は出勤を記録します。
func (h *TimeEntryGrpcHandler) ClockIn(ctx context.Context, req *v1.ClockInRequest) (*v1.TimeEntryResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := h.svc.ClockIn(ctx, timeentry.ClockInInput{UserID: actorID, DepartmentID: req.DepartmentID})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &v1.TimeEntryResponse{
		Entry:   toWireTimeEntry(entry),
		State:   string(timeentry.StateClockedIn),
		Message: "Clocked in at " + entry.ClockIn.Format("15:04"),
	}, nil
}

// ClockOut は退勤を記録し、勤務時間を返します。
func (h *TimeEntryGrpcHandler) ClockOut(ctx context.Context, req *v1.ClockOutRequest) (*v1.TimeEntryResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := h.svc.ClockOut(ctx, timeentry.ClockOutInput{UserID: actorID, TimeEntryID: req.TimeEntryID})
	if err != nil {
		return nil, toStatusError(err)
	}

	message := "Clocked out"
	if entry.Hours != nil {
		message = fmt.Sprintf("Clocked out after %s hours", entry.Hours.StringFixed(2))
	}
	return &v1.TimeEntryResponse{
		Entry:   toWireTimeEntry(entry),
		State:   string(timeentry.StateClockedOut),
		Message: message,
	}, nil
}

// GetOpenEntry は打刻中のエントリを返します。打刻していなければ Entry は nil です。
func (h *TimeEntryGrpcHandler) GetOpenEntry(ctx context.Context, req *v1.GetOpenEntryRequest) (*v1.TimeEntryResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	open, err := h.svc.GetOpenEntry(ctx, timeentry.GetOpenEntryInput{UserID: actorID})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &v1.TimeEntryResponse{
		Entry: toWireTimeEntry(open),
		State: string(timeentry.StateOf(open)),
	}, nil
}

// ListEntries は打刻履歴を新しい順に返します。
func (h *TimeEntryGrpcHandler) ListEntries(ctx context.Context, req *v1.ListEntriesRequest) (*v1.ListEntriesResponse, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := h.svc.ListEntries(ctx, timeentry.ListEntriesInput{UserID: actorID, Limit: int(req.Limit)})
	if err != nil {
		return nil, toStatusError(err)
	}

	out := make([]*v1.TimeEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, toWireTimeEntry(e))
	}
	return &v1.ListEntriesResponse{Entries: out}, nil
}

func toWireTimeEntry(e *timeentry.TimeEntry) *v1.TimeEntry {
	if e == nil {
		return nil
	}
	out := &v1.TimeEntry{
		ID:           e.ID,
		UserID:       e.UserID,
		DepartmentID: e.DepartmentID,
		ClockIn:      e.ClockIn,
		ClockOut:     e.ClockOut,
	}
	if e.Hours != nil {
		hours := e.Hours.StringFixed(2)
		out.Hours = &hours
	}
	return out
}
