package e2e

import (
	"chat-client/domain"
	"chat-client/runtime"
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type testChatSuite struct {
	BaseSuite
}

func TestChatSuite(t *testing.T) {
	suite.Run(t, &testChatSuite{})
}

func (s *testChatSuite) credential() domain.Credential {
	ctx := context.Background()
	if s.Config.Email != "" {
		credential, err := s.API().Login(ctx, s.Config.Email, s.Config.Password)
		s.Require().NoError(err)
		return credential
	}
	name := "e2e" + uuid.NewString()[:8]
	credential, err := s.API().Register(ctx, name, name+"@example.com", uuid.NewString())
	s.Require().NoError(err)
	return credential
}

func (s *testChatSuite) TestPrivateRoomRoundTrip() {
	var credential domain.Credential
	var navigation domain.Navigation
	text := fmt.Sprintf("hello from %s", uuid.NewString())

	// --- STEP 0: ACCOUNT & ROOM ---
	s.Run("Step 0: Obtain a credential and create a private room", func() {
		s.Step("Creating private room")
		credential = s.credential()
		var err error
		navigation, err = s.API().CreateRoom(context.Background(), credential, "e2e-"+uuid.NewString()[:8])
		s.Require().NoError(err)
		s.Require().NotEmpty(navigation.RoomID)
	})

	// --- STEP 1: JOIN, SEND, ECHO ---
	s.Run("Step 1: Join the room and see the own message echoed", func() {
		s.WithSession("Chatting in the private room", credential, navigation, func(ctx context.Context, session *runtime.Session) {
			s.WaitFor(session, "room never confirmed", func(view domain.SessionView) bool {
				return view.State == domain.InRoom
			})
			s.Require().NoError(session.Submit(ctx, text))
			s.WaitFor(session, "message never echoed", func(view domain.SessionView) bool {
				_, found := lo.Find(view.Messages, func(msg domain.DisplayMessage) bool {
					return msg.Text == text
				})
				return found
			})
			echoed, _ := lo.Find(session.Messages(), func(msg domain.DisplayMessage) bool { return msg.Text == text })
			s.Require().Equal(domain.AlignSelf, echoed.Alignment)
		})
	})

	// --- STEP 2: SWITCH TO PUBLIC ---
	s.Run("Step 2: Switch to the public room", func() {
		s.WithSession("Switching rooms", credential, navigation, func(ctx context.Context, session *runtime.Session) {
			s.WaitFor(session, "room never confirmed", func(view domain.SessionView) bool {
				return view.State == domain.InRoom
			})
			s.Require().NoError(session.Navigate(ctx, domain.PublicRoom))
			s.WaitFor(session, "public room never confirmed", func(view domain.SessionView) bool {
				return view.State == domain.InRoom && view.Room.Hint == domain.PublicRoom.Hint()
			})
			_, found := lo.Find(session.Messages(), func(msg domain.DisplayMessage) bool { return msg.Text == text })
			s.Require().False(found, "private message leaked into the public room")
		})
	})
}

func (s *testChatSuite) TestMissingCredential() {
	s.WithSession("Starting without credential", domain.Credential{}, domain.PublicRoom, func(ctx context.Context, session *runtime.Session) {
		<-session.Done()
		s.Require().Equal(domain.Closed, session.State())
		s.Require().Error(session.View().Err)
	})
}
