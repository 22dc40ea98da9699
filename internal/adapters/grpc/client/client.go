// Package client は timeclock.v1 の型付きクライアントです。応答を session.State に反映します。
package client

import (
	"context"
	"fmt"
	"time"

	v1 "github.com/ogurasousui/timeclock-grpc/internal/adapters/grpc/timeclockv1"
	"github.com/ogurasousui/timeclock-grpc/internal/session"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
)

// Client は 1 人のアクターとしてサーバーを呼び出し、打刻状態をセッションに保持します。
type Client struct {
	conn        *actorConn
	departments v1.DepartmentServiceClient
	entries     v1.TimeEntryServiceClient
	schedules   v1.ScheduleServiceClient
	users       v1.UserServiceClient
	state       *session.State
	now         func() time.Time
}

// New は Client を生成します。state が nil なら新しいセッションを作ります。
func New(cc grpc.ClientConnInterface, state *session.State, opts ...Option) *Client {
	if state == nil {
		state = session.New(0)
	}
	c := &Client{
		conn:  &actorConn{cc: cc},
		state: state,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.departments = v1.NewDepartmentServiceClient(c.conn)
	c.entries = v1.NewTimeEntryServiceClient(c.conn)
	c.schedules = v1.NewScheduleServiceClient(c.conn)
	c.users = v1.NewUserServiceClient(c.conn)
	return c
}

// State はセッションを返します。
func (c *Client) State() *session.State {
	return c.state
}

// Departments は部署サービスのクライアントを返します。
func (c *Client) Departments() v1.DepartmentServiceClient {
	return c.departments
}

// Schedules はスケジュールサービスのクライアントを返します。
func (c *Client) Schedules() v1.ScheduleServiceClient {
	return c.schedules
}

// Users はユーザーサービスのクライアントを返します。
func (c *Client) Users() v1.UserServiceClient {
	return c.users
}

// ClockIn は出勤し、作成されたエントリを打刻中としてセッションに追加します。
func (c *Client) ClockIn(ctx context.Context, departmentID string) (*v1.TimeEntryResponse, error) {
	resp, err := c.entries.ClockIn(ctx, &v1.ClockInRequest{DepartmentID: departmentID})
	if err != nil {
		return nil, err
	}

	entry, err := toSessionEntry(resp.Entry)
	if err != nil {
		return nil, err
	}
	c.state.ApplyClockIn(entry)
	return resp, nil
}

// ClockOut は退勤します。応答前にローカルで時間数を見積もり、応答後はサーバーの値で上書きします。
// 失敗した場合はサーバーの状態を取り直します。
func (c *Client) ClockOut(ctx context.Context, entryID string) (*v1.TimeEntryResponse, error) {
	_, localErr := c.state.ApplyClockOut(entryID, c.now())

	resp, err := c.entries.ClockOut(ctx, &v1.ClockOutRequest{TimeEntryID: entryID})
	if err != nil {
		if localErr == nil {
			if refreshErr := c.Refresh(ctx); refreshErr != nil {
				return nil, fmt.Errorf("%w (refresh: %v)", err, refreshErr)
			}
		}
		return nil, err
	}

	entry, err := toSessionEntry(resp.Entry)
	if err != nil {
		return nil, err
	}
	c.state.ApplyServerEntry(entry)
	return resp, nil
}

// Refresh は打刻中のエントリと履歴をサーバーから取得し、セッションを置き換えます。
func (c *Client) Refresh(ctx context.Context) error {
	openResp, err := c.entries.GetOpenEntry(ctx, &v1.GetOpenEntryRequest{})
	if err != nil {
		return err
	}
	listResp, err := c.entries.ListEntries(ctx, &v1.ListEntriesRequest{})
	if err != nil {
		return err
	}

	var open *session.Entry
	if openResp.Entry != nil {
		entry, err := toSessionEntry(openResp.Entry)
		if err != nil {
			return err
		}
		open = &entry
	}

	entries := make([]session.Entry, 0, len(listResp.Entries))
	for _, e := range listResp.Entries {
		entry, err := toSessionEntry(e)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}

	c.state.Reconcile(open, entries)
	return nil
}

// LoadDepartments は部署一覧を取得してセッションのキャッシュを置き換えます。
func (c *Client) LoadDepartments(ctx context.Context, permittedOnly bool) ([]session.Department, error) {
	resp, err := c.departments.ListDepartments(ctx, &v1.ListDepartmentsRequest{PermittedOnly: permittedOnly})
	if err != nil {
		return nil, err
	}

	departments := make([]session.Department, 0, len(resp.Departments))
	for _, d := range resp.Departments {
		totalCost, err := decimal.NewFromString(d.TotalCost)
		if err != nil {
			return nil, fmt.Errorf("parse total cost of %s: %w", d.ID, err)
		}
		departments = append(departments, session.Department{
			ID:            d.ID,
			Name:          d.Name,
			EmployeeCount: int(d.EmployeeCount),
			TotalCost:     totalCost,
		})
	}

	c.state.SetDepartments(departments)
	return departments, nil
}

func toSessionEntry(e *v1.TimeEntry) (session.Entry, error) {
	if e == nil {
		return session.Entry{}, fmt.Errorf("client: empty time entry in response")
	}
	entry := session.Entry{
		ID:           e.ID,
		DepartmentID: e.DepartmentID,
		ClockIn:      e.ClockIn,
		ClockOut:     e.ClockOut,
	}
	if e.Hours != nil {
		hours, err := decimal.NewFromString(*e.Hours)
		if err != nil {
			return session.Entry{}, fmt.Errorf("parse hours of %s: %w", e.ID, err)
		}
		entry.Hours = &hours
	}
	return entry, nil
}
