package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

// DepartmentService manages departments. Deletion is deliberately strict:
// the store refuses while users, projects, or tasks still reference the
// department, and there is no implicit cascade.
type DepartmentService struct {
	store      ports.Store
	authorizer ports.Authorizer
	log        zerolog.Logger
}

func NewDepartmentService(store ports.Store, authorizer ports.Authorizer, log zerolog.Logger) *DepartmentService {
	return &DepartmentService{store: store, authorizer: authorizer, log: log}
}

func (s *DepartmentService) Create(ctx context.Context, session *domain.Session, in ports.CreateDepartmentInput) (*domain.Department, error) {
	if err := s.authorizer.Authorize(session, domain.ActionManageDepartments, nil).Err(); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, fmt.Errorf("name is required: %w", domain.ErrValidationFailed)
	}
	if in.Budget < 0 {
		return nil, fmt.Errorf("budget must be non-negative: %w", domain.ErrValidationFailed)
	}
	return s.store.Departments().Create(ctx, &domain.Department{
		Name:       in.Name,
		HeadUserID: in.HeadUserID,
		Budget:     in.Budget,
	})
}

func (s *DepartmentService) Get(ctx context.Context, session *domain.Session, id string) (*domain.Department, error) {
	return s.store.Departments().GetByID(ctx, id)
}

func (s *DepartmentService) List(ctx context.Context, session *domain.Session) ([]*domain.Department, error) {
	return s.store.Departments().List(ctx)
}

func (s *DepartmentService) Update(ctx context.Context, session *domain.Session, id string, in ports.UpdateDepartmentInput) (*domain.Department, error) {
	if err := s.authorizer.Authorize(session, domain.ActionManageDepartments, nil).Err(); err != nil {
		return nil, err
	}
	return s.store.Departments().Update(ctx, id, func(d *domain.Department) error {
		if in.Name != nil {
			if *in.Name == "" {
				return fmt.Errorf("name is required: %w", domain.ErrValidationFailed)
			}
			d.Name = *in.Name
		}
		if in.HeadUserID != nil {
			d.HeadUserID = *in.HeadUserID
		}
		if in.Budget != nil {
			if *in.Budget < 0 {
				return fmt.Errorf("budget must be non-negative: %w", domain.ErrValidationFailed)
			}
			d.Budget = *in.Budget
		}
		return nil
	})
}

func (s *DepartmentService) Delete(ctx context.Context, session *domain.Session, id string) error {
	if err := s.authorizer.Authorize(session, domain.ActionManageDepartments, nil).Err(); err != nil {
		return err
	}
	if err := s.store.Departments().Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("department_id", id).Str("actor", session.Username).Msg("department deleted")
	return nil
}

// ClientService manages client accounts. Deleting a client with projects
// requires the caller to confirm the cascade explicitly; the cascade removes
// the client's projects after detaching their tasks.
type ClientService struct {
	store      ports.Store
	authorizer ports.Authorizer
	log        zerolog.Logger
}

func NewClientService(store ports.Store, authorizer ports.Authorizer, log zerolog.Logger) *ClientService {
	return &ClientService{store: store, authorizer: authorizer, log: log}
}

func (s *ClientService) Create(ctx context.Context, session *domain.Session, in ports.CreateClientInput) (*domain.Client, error) {
	if err := s.authorizer.Authorize(session, domain.ActionManageClients, nil).Err(); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, fmt.Errorf("name is required: %w", domain.ErrValidationFailed)
	}
	status := in.Status
	if status == "" {
		status = domain.ClientPending
	}
	return s.store.Clients().Create(ctx, &domain.Client{
		Name:    in.Name,
		Contact: in.Contact,
		Status:  status,
	})
}

func (s *ClientService) Get(ctx context.Context, session *domain.Session, id string) (*domain.Client, error) {
	return s.store.Clients().GetByID(ctx, id)
}

func (s *ClientService) List(ctx context.Context, session *domain.Session) ([]*domain.Client, error) {
	return s.store.Clients().List(ctx)
}

func (s *ClientService) Update(ctx context.Context, session *domain.Session, id string, in ports.UpdateClientInput) (*domain.Client, error) {
	if err := s.authorizer.Authorize(session, domain.ActionManageClients, nil).Err(); err != nil {
		return nil, err
	}
	return s.store.Clients().Update(ctx, id, func(c *domain.Client) error {
		if in.Name != nil {
			if *in.Name == "" {
				return fmt.Errorf("name is required: %w", domain.ErrValidationFailed)
			}
			c.Name = *in.Name
		}
		if in.Contact != nil {
			c.Contact = *in.Contact
		}
		if in.Status != nil {
			c.Status = *in.Status
		}
		return nil
	})
}

// Delete removes a client. Without cascade it fails while projects still
// reference the client; with cascade it detaches tasks from each project,
// deletes the projects, then the client.
func (s *ClientService) Delete(ctx context.Context, session *domain.Session, id string, cascade bool) error {
	if err := s.authorizer.Authorize(session, domain.ActionManageClients, nil).Err(); err != nil {
		return err
	}

	if !cascade {
		return s.store.Clients().Delete(ctx, id)
	}

	projects, err := s.store.Projects().List(ctx, ports.ProjectFilter{ClientID: id})
	if err != nil {
		return err
	}
	for _, p := range projects {
		tasks, err := s.store.Tasks().List(ctx, ports.TaskFilter{ProjectID: p.ID})
		if err != nil {
			return err
		}
		for _, task := range tasks {
			if _, err := s.store.Tasks().Update(ctx, task.ID, func(t *domain.Task) error {
				t.ProjectID = ""
				return nil
			}); err != nil {
				return err
			}
		}
		if err := s.store.Projects().Delete(ctx, p.ID); err != nil {
			return err
		}
	}

	if err := s.store.Clients().Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("client_id", id).Int("projects_removed", len(projects)).Str("actor", session.Username).Msg("client deleted with cascade")
	return nil
}

// ProjectService manages projects.
type ProjectService struct {
	store      ports.Store
	authorizer ports.Authorizer
	dispatcher NotifyDispatcher
	log        zerolog.Logger
}

func NewProjectService(store ports.Store, authorizer ports.Authorizer, dispatcher NotifyDispatcher, log zerolog.Logger) *ProjectService {
	return &ProjectService{store: store, authorizer: authorizer, dispatcher: dispatcher, log: log}
}

func (s *ProjectService) Create(ctx context.Context, session *domain.Session, in ports.CreateProjectInput) (*domain.Project, error) {
	if err := s.authorizer.Authorize(session, domain.ActionManageProjects, nil).Err(); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, fmt.Errorf("name is required: %w", domain.ErrValidationFailed)
	}
	return s.store.Projects().Create(ctx, &domain.Project{
		Name:          in.Name,
		DepartmentID:  in.DepartmentID,
		ClientID:      in.ClientID,
		Status:        domain.ProjectPlanning,
		TeamMemberIDs: in.TeamMemberIDs,
		DueDate:       in.DueDate,
	})
}

func (s *ProjectService) Get(ctx context.Context, session *domain.Session, id string) (*domain.Project, error) {
	return s.store.Projects().GetByID(ctx, id)
}

func (s *ProjectService) List(ctx context.Context, session *domain.Session, f ports.ProjectFilter) ([]*domain.Project, error) {
	return s.store.Projects().List(ctx, f)
}

func (s *ProjectService) Update(ctx context.Context, session *domain.Session, id string, in ports.UpdateProjectInput) (*domain.Project, error) {
	if err := s.authorizer.Authorize(session, domain.ActionManageProjects, nil).Err(); err != nil {
		return nil, err
	}

	var statusChanged bool
	project, err := s.store.Projects().Update(ctx, id, func(p *domain.Project) error {
		if in.Name != nil {
			if *in.Name == "" {
				return fmt.Errorf("name is required: %w", domain.ErrValidationFailed)
			}
			p.Name = *in.Name
		}
		if in.Status != nil {
			if !in.Status.Valid() {
				return fmt.Errorf("status %q: %w", *in.Status, domain.ErrValidationFailed)
			}
			if *in.Status != p.Status {
				statusChanged = true
			}
			p.Status = *in.Status
		}
		if in.ClientID != nil {
			p.ClientID = *in.ClientID
		}
		if in.TeamMemberIDs != nil {
			p.TeamMemberIDs = *in.TeamMemberIDs
		}
		if in.DueDate != nil {
			p.DueDate = *in.DueDate
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if statusChanged {
		for _, uid := range project.TeamMemberIDs {
			s.dispatcher.Enqueue(ports.NotifyInput{
				RecipientUserID: uid,
				Kind:            domain.NotifProjectUpdate,
				Priority:        domain.NotifMedium,
				Title:           "Project status changed",
				Message:         fmt.Sprintf("%q is now %s", project.Name, project.Status),
				RelatedEntityID: project.ID,
			})
		}
	}
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, session *domain.Session, id string) error {
	if err := s.authorizer.Authorize(session, domain.ActionManageProjects, nil).Err(); err != nil {
		return err
	}
	return s.store.Projects().Delete(ctx, id)
}
