package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>1500.00
<FITID>2024012001
<NAME>PAYROLL DEPOSIT
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240122120000[0:GMT]
<TRNAMT>-42.00
<FITID>2024012201
<NAME>POS PURCHASE WHOLE FOODS MKT
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1432.50
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestParseFile_BankStatement(t *testing.T) {
	parser := NewParser()

	txns, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, txns, 3)

	coffee := txns[0]
	assert.Equal(t, "2024011501", coffee.ID)
	assert.Equal(t, "1234567890", coffee.AccountID)
	assert.Equal(t, "USD", coffee.Currency)
	assert.Equal(t, "STARBUCKS STORE #1234", coffee.MerchantName)
	assert.InDelta(t, -25.50, coffee.Amount, 0.001)
	assert.True(t, coffee.IsExpense())
	assert.Equal(t, 2024, coffee.Date.Year())
	assert.Equal(t, time.January, coffee.Date.Month())
	assert.NotEmpty(t, coffee.Hash)

	payroll := txns[1]
	assert.InDelta(t, 1500.00, payroll.Amount, 0.001)
	assert.False(t, payroll.IsExpense())

	// POS prefix should be stripped from the merchant name.
	groceries := txns[2]
	assert.Equal(t, "WHOLE FOODS MKT", groceries.MerchantName)
	assert.Equal(t, "POS PURCHASE WHOLE FOODS MKT", groceries.Description)
}

func TestParseFile_InvalidContent(t *testing.T) {
	parser := NewParser()

	_, err := parser.ParseFile(context.Background(), strings.NewReader("not an ofx file"))
	require.Error(t, err)
}

func TestGetAccounts(t *testing.T) {
	parser := NewParser()

	accounts, err := parser.GetAccounts(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"1234567890"}, accounts)
}

func TestExtractMerchantName(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		input    string
		memo     string
		expected string
	}{
		{"strips check card prefix", "CHECK CARD NETFLIX.COM", "", "NETFLIX.COM"},
		{"strips leading date", "01/15 TRADER JOES", "", "TRADER JOES"},
		{"plain name untouched", "Esselunga Milano", "", "Esselunga Milano"},
		{"generic name falls back to memo", "PURCHASE", "SPOTIFY USA", "SPOTIFY USA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := ofxgo.Transaction{
				Name: ofxgo.String(tt.input),
				Memo: ofxgo.String(tt.memo),
			}
			got := parser.extractMerchantName(tx)
			assert.Equal(t, tt.expected, got)
		})
	}
}
