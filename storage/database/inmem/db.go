// Package inmemdb provides mutex-guarded in-memory repositories. They back
// unit tests and DEV runs without a database.
package inmemdb

import (
	"sync"

	"github.com/trezcool/msaada/core/award"
	"github.com/trezcool/msaada/core/student"
	"github.com/trezcool/msaada/core/user"
)

type (
	DB struct {
		user    *userTable
		student *studentTable
		award   *awardTable
	}

	userTable struct {
		t     map[string]*user.User
		mutex sync.RWMutex
	}

	studentTable struct {
		t     map[string]*student.Student
		hours []student.ServiceHoursEntry
		mutex sync.RWMutex
	}

	awardTable struct {
		t     map[string]*award.Application
		mutex sync.RWMutex
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{t: make(map[string]*user.User)},
		student: &studentTable{t: make(map[string]*student.Student)},
		award:   &awardTable{t: make(map[string]*award.Application)},
	}
	return db, nil
}
