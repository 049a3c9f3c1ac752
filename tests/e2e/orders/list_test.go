package orders

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/okunev/bookmart/internal/testutil"
	"github.com/okunev/bookmart/tests/e2e"
)

const (
	OrdersURL   = "/api/orders"
	CheckoutURL = "/api/basket/checkout"
)

func Test_OrdersList(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	e2e.ServeInTx(pg.Pool, t, func(tx pgx.Tx, srvURL string, s e2e.Services) {
		username := "historian"
		pwd := "StrongEnoughPassword"
		_, err := s.Auth.Register(t.Context(), username, pwd)
		require.NoError(t, err)

		user, err := s.Storage.User().GetUserByUsername(t.Context(), username)
		require.NoError(t, err)
		account, err := s.Storage.Account().GetAccountByUserID(t.Context(), user.ID)
		require.NoError(t, err)

		account.FirstName = "Nikolai"
		account.LastName = "Historian"
		account.Phone = "+1 555 0200"
		account.Address = "2 Archive Street"
		_, err = s.Storage.Account().UpdateProfile(t.Context(), account)
		require.NoError(t, err)

		book, err := s.Storage.Book().CreateBook(t.Context(), "Fathers and Sons", "Ivan Turgenev", decimal.RequireFromString("6.00"))
		require.NoError(t, err)

		do := func(t *testing.T, method string, url string) *http.Response {
			t.Helper()

			req, err := http.NewRequest(method, srvURL+url, nil)
			require.NoError(t, err, "failed to create request")

			pair, err := s.Auth.Login(t.Context(), username, pwd)
			require.NoError(t, err, "failed to login user")
			s.Auth.SetTokensToRequest(req, pair)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err, "failed to send request")
			return resp
		}

		t.Run("empty history", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				resp := do(t, http.MethodGet, OrdersURL)
				defer resp.Body.Close() // nolint:errcheck
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)

				require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", string(body))
				require.JSONEq(t, `[]`, string(body))
			})
		})

		t.Run("orders after checkout", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				_, err := s.Storage.Account().SetBalance(t.Context(), account.ID, decimal.RequireFromString("30.00"))
				require.NoError(t, err)
				basket, err := s.Storage.Basket().GetBasket(t.Context(), account.ID)
				require.NoError(t, err)
				_, err = s.Storage.Basket().AddItem(t.Context(), basket.ID, book, 2)
				require.NoError(t, err)

				resp := do(t, http.MethodPost, CheckoutURL)
				resp.Body.Close() // nolint:errcheck
				require.Equal(t, http.StatusCreated, resp.StatusCode, "checkout should succeed")

				resp = do(t, http.MethodGet, OrdersURL)
				defer resp.Body.Close() // nolint:errcheck
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)

				require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", string(body))

				var orders []struct {
					Total float64 `json:"total"`
					Items []struct {
						Title    string `json:"title"`
						Quantity int    `json:"quantity"`
					} `json:"items"`
				}
				require.NoError(t, json.Unmarshal(body, &orders))
				require.Len(t, orders, 1)
				require.InDelta(t, 17.99, orders[0].Total, 0.001, "total should be 2*6.00 plus delivery")
				require.Len(t, orders[0].Items, 1)
				require.Equal(t, "Fathers and Sons", orders[0].Items[0].Title)
				require.Equal(t, 2, orders[0].Items[0].Quantity)
			})
		})
	})
}
