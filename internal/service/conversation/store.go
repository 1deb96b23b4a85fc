package conversation

import (
	"ChatGateway/internal/ai"
	"errors"
	"slices"
	"sync"
)

// ErrNoEntry — дописывание обмена без предварительного чтения истории (или после её сброса).
var ErrNoEntry = errors.New("no conversation entry for uid")

// Store — потокобезопасное хранилище историй диалогов: uid → упорядоченный список сообщений.
// Создаётся один раз при старте процесса, ничего не сохраняет между перезапусками.
// Ограничений на количество записей и срок жизни нет: записи живут до сброса или остановки процесса.
type Store struct {
	mu      sync.Mutex
	entries map[string][]ai.Message
	locks   map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string][]ai.Message),
		locks:   make(map[string]*userLock),
	}
}

// GetOrCreate возвращает копию истории uid, создавая пустую запись при отсутствии.
func (s *Store) GetOrCreate(uid string) []ai.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	history, ok := s.entries[uid]
	if !ok {
		history = []ai.Message{}
		s.entries[uid] = history
	}
	return slices.Clone(history)
}

// Delete удаляет историю uid. Отсутствие записи ошибкой не считается.
func (s *Store) Delete(uid string) {
	s.mu.Lock()
	delete(s.entries, uid)
	s.mu.Unlock()
}

// AppendExchange дописывает реплику пользователя и ответ ассистента (в этом порядке)
// и возвращает новую длину истории.
func (s *Store) AppendExchange(uid string, user, assistant ai.Message) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history, ok := s.entries[uid]
	if !ok {
		return 0, ErrNoEntry
	}
	history = append(history, user, assistant)
	s.entries[uid] = history
	return len(history), nil
}

// Len возвращает длину истории uid (0, если записи нет).
func (s *Store) Len(uid string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries[uid])
}

// Size возвращает количество отслеживаемых uid.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Lock захватывает эксклюзивный доступ к диалогу uid и возвращает функцию освобождения.
// Хранилище само его не требует: им пользуется Service, когда включена последовательная обработка.
func (s *Store) Lock(uid string) (unlock func()) {
	s.mu.Lock()
	l, ok := s.locks[uid]
	if !ok {
		l = &userLock{}
		s.locks[uid] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, uid)
		}
		s.mu.Unlock()
	}
}
