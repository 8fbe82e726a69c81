package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/prodhub/internal/common"
	"github.com/dmitrijs2005/prodhub/internal/server/models"
)

type usersRepo struct{ s *store }

func (r *usersRepo) Create(ctx context.Context, u *models.User) error {
	err := r.s.lock("users.Create")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	if _, ok := r.s.users[u.ID]; ok {
		return common.ErrorConflict
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	err := r.s.lock("users.GetByID")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *usersRepo) Update(ctx context.Context, u *models.User) error {
	err := r.s.lock("users.Update")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	cur, ok := r.s.users[u.ID]
	if !ok {
		return common.ErrorNotFound
	}
	cur.Username, cur.DisplayName, cur.Bio, cur.AvatarURL, cur.UpdatedAt = u.Username, u.DisplayName, u.Bio, u.AvatarURL, u.UpdatedAt
	r.s.users[u.ID] = cur
	return nil
}

type reposRepo struct{ s *store }

func (r *reposRepo) Create(ctx context.Context, repo *models.Repository) error {
	err := r.s.lock("repos.Create")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	if _, ok := r.s.repos[repo.ID]; ok {
		return common.ErrorConflict
	}
	r.s.repos[repo.ID] = *repo
	return nil
}

func (r *reposRepo) GetByID(ctx context.Context, id string) (*models.Repository, error) {
	err := r.s.lock("repos.GetByID")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	repo, ok := r.s.repos[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &repo, nil
}

func (r *reposRepo) ListPublic(ctx context.Context, limit int) ([]*models.Repository, error) {
	err := r.s.lock("repos.ListPublic")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	result := r.s.filterRepos(func(repo *models.Repository) bool { return !repo.IsPrivate })
	if limit >= 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *reposRepo) ListByOwner(ctx context.Context, ownerID string, includePrivate bool) ([]*models.Repository, error) {
	err := r.s.lock("repos.ListByOwner")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.s.filterRepos(func(repo *models.Repository) bool {
		return repo.OwnerID == ownerID && (includePrivate || !repo.IsPrivate)
	}), nil
}

func (s *store) filterRepos(keep func(*models.Repository) bool) []*models.Repository {
	result := []*models.Repository{}
	for _, repo := range s.repos {
		repo := repo
		if keep(&repo) {
			result = append(result, &repo)
		}
	}
	slices.SortFunc(result, func(a, b *models.Repository) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return result
}

func (r *reposRepo) Touch(ctx context.Context, id string, at time.Time) error {
	return r.update("repos.Touch", id, func(repo *models.Repository) { repo.UpdatedAt = at })
}

func (r *reposRepo) AdjustStars(ctx context.Context, id string, delta int) error {
	return r.update("repos.AdjustStars", id, func(repo *models.Repository) {
		repo.Stars = max(repo.Stars+delta, 0)
	})
}

func (r *reposRepo) RenameOwner(ctx context.Context, ownerID, username string) error {
	err := r.s.lock("repos.RenameOwner")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	for id, repo := range r.s.repos {
		if repo.OwnerID == ownerID {
			repo.OwnerUsername = username
			r.s.repos[id] = repo
		}
	}
	return nil
}

func (r *reposRepo) update(op, id string, fn func(*models.Repository)) error {
	err := r.s.lock(op)
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	repo, ok := r.s.repos[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(&repo)
	r.s.repos[id] = repo
	return nil
}

type branchesRepo struct{ s *store }

func (r *branchesRepo) Create(ctx context.Context, b *models.Branch) error {
	err := r.s.lock("branches.Create")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	if _, ok := r.s.repos[b.RepositoryID]; !ok {
		return common.ErrorNotFound
	}
	for _, other := range r.s.branches {
		if other.RepositoryID != b.RepositoryID {
			continue
		}
		if other.Name == b.Name || (b.IsDefault && other.IsDefault) || other.ID == b.ID {
			return common.ErrorConflict
		}
	}
	r.s.branches[b.ID] = *b
	return nil
}

func (r *branchesRepo) Get(ctx context.Context, repoID, branchID string) (*models.Branch, error) {
	return r.get("branches.Get", repoID, branchID)
}

func (r *branchesRepo) GetForUpdate(ctx context.Context, repoID, branchID string) (*models.Branch, error) {
	return r.get("branches.GetForUpdate", repoID, branchID)
}

func (r *branchesRepo) get(op, repoID, branchID string) (*models.Branch, error) {
	err := r.s.lock(op)
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	b, ok := r.s.branches[branchID]
	if !ok || b.RepositoryID != repoID {
		return nil, common.ErrorNotFound
	}
	return &b, nil
}

func (r *branchesRepo) ListByRepository(ctx context.Context, repoID string) ([]*models.Branch, error) {
	err := r.s.lock("branches.ListByRepository")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	result := []*models.Branch{}
	for _, b := range r.s.branches {
		b := b
		if b.RepositoryID == repoID {
			result = append(result, &b)
		}
	}
	slices.SortFunc(result, func(a, b *models.Branch) int {
		switch {
		case a.IsDefault && !b.IsDefault:
			return -1
		case b.IsDefault && !a.IsDefault:
			return 1
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return result, nil
}

func (r *branchesRepo) SetLastCommit(ctx context.Context, branchID, commitID string) error {
	err := r.s.lock("branches.SetLastCommit")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	b, ok := r.s.branches[branchID]
	if !ok {
		return common.ErrorNotFound
	}
	b.LastCommitID = &commitID
	r.s.branches[branchID] = b
	return nil
}

type commitsRepo struct{ s *store }

func (r *commitsRepo) Create(ctx context.Context, c *models.Commit) error {
	err := r.s.lock("commits.Create")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	if _, ok := r.s.repos[c.RepositoryID]; !ok {
		return common.ErrorNotFound
	}
	if _, ok := r.s.branches[c.BranchID]; !ok {
		return common.ErrorNotFound
	}
	stored := *c
	stored.Files = slices.Clone(c.Files)
	if stored.Files == nil {
		stored.Files = []models.CommitFile{}
	}
	r.s.commits[c.ID] = stored
	return nil
}

func (r *commitsRepo) GetByID(ctx context.Context, repoID, commitID string) (*models.Commit, error) {
	err := r.s.lock("commits.GetByID")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	c, ok := r.s.commits[commitID]
	if !ok || c.RepositoryID != repoID {
		return nil, common.ErrorNotFound
	}
	c.Files = slices.Clone(c.Files)
	return &c, nil
}

func (r *commitsRepo) ListByBranch(ctx context.Context, repoID, branchID string) ([]*models.Commit, error) {
	err := r.s.lock("commits.ListByBranch")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	result := []*models.Commit{}
	for _, c := range r.s.commits {
		c := c
		if c.RepositoryID == repoID && c.BranchID == branchID {
			c.Files = slices.Clone(c.Files)
			result = append(result, &c)
		}
	}
	slices.SortFunc(result, func(a, b *models.Commit) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return result, nil
}

func (r *commitsRepo) RenameAuthor(ctx context.Context, authorID, name, avatar string) error {
	err := r.s.lock("commits.RenameAuthor")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	for id, c := range r.s.commits {
		if c.AuthorID == authorID {
			c.AuthorName, c.AuthorAvatar = name, avatar
			r.s.commits[id] = c
		}
	}
	return nil
}

type starsRepo struct{ s *store }

func (r *starsRepo) Add(ctx context.Context, userID, repoID string, at time.Time) (bool, error) {
	err := r.s.lock("stars.Add")
	defer r.s.mu.Unlock()
	if err != nil {
		return false, err
	}
	if _, ok := r.s.repos[repoID]; !ok {
		return false, common.ErrorNotFound
	}
	k := starKey{userID, repoID}
	if _, ok := r.s.stars[k]; ok {
		return false, nil
	}
	r.s.stars[k] = at
	return true, nil
}

func (r *starsRepo) Remove(ctx context.Context, userID, repoID string) (bool, error) {
	err := r.s.lock("stars.Remove")
	defer r.s.mu.Unlock()
	if err != nil {
		return false, err
	}
	k := starKey{userID, repoID}
	if _, ok := r.s.stars[k]; !ok {
		return false, nil
	}
	delete(r.s.stars, k)
	return true, nil
}

func (r *starsRepo) Exists(ctx context.Context, userID, repoID string) (bool, error) {
	err := r.s.lock("stars.Exists")
	defer r.s.mu.Unlock()
	if err != nil {
		return false, err
	}
	_, ok := r.s.stars[starKey{userID, repoID}]
	return ok, nil
}

func (r *starsRepo) ListStargazers(ctx context.Context, repoID string) ([]string, error) {
	err := r.s.lock("stars.ListStargazers")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	type entry struct {
		userID string
		at     time.Time
	}
	var entries []entry
	for k, at := range r.s.stars {
		if k.repoID == repoID {
			entries = append(entries, entry{k.userID, at})
		}
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := a.at.Compare(b.at); c != 0 {
			return c
		}
		return strings.Compare(a.userID, b.userID)
	})
	var result []string
	for _, e := range entries {
		result = append(result, e.userID)
	}
	return result, nil
}

type notificationsRepo struct{ s *store }

func (r *notificationsRepo) Create(ctx context.Context, n *models.Notification) error {
	err := r.s.lock("notifications.Create")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	r.s.notifications[n.ID] = *n
	return nil
}

func (r *notificationsRepo) ListByRecipient(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	err := r.s.lock("notifications.ListByRecipient")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	result := []*models.Notification{}
	for _, n := range r.s.notifications {
		n := n
		if n.ToUserID == userID {
			result = append(result, &n)
		}
	}
	slices.SortFunc(result, func(a, b *models.Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	if limit >= 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *notificationsRepo) MarkRead(ctx context.Context, userID, id string) error {
	err := r.s.lock("notifications.MarkRead")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	n, ok := r.s.notifications[id]
	if !ok || n.ToUserID != userID {
		return common.ErrorNotFound
	}
	n.Read = true
	r.s.notifications[id] = n
	return nil
}
