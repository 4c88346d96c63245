package telegram

const welcomeMessage = `🎉 Selamat datang di Expense Tracker Bot! / Welcome to Expense Tracker Bot!

Saya dapat membantu Anda melacak pengeluaran bulanan dengan beberapa cara:
I can help you track your monthly expenses in several ways:

📝 *Input Teks / Text Input:*
• Bahasa Indonesia: "Kopi 15rb", "Makan siang 25000", "Ojek 10k"
• English: "Coffee 15000", "Bus ticket 3500"

📸 *Input Gambar / Image Input:*
Kirim foto struk, bon, atau label harga dan saya akan mengekstrak informasi pengeluaran secara otomatis
Send photos of receipts, bills, or price tags and I'll extract expense information automatically

📊 *Laporan / Reports:* Dapatkan laporan bulanan yang detail dan analitik
Get detailed monthly reports and analytics

*Perintah yang Tersedia / Available Commands:*
/help - Tampilkan pesan bantuan / Show help message
/report - Laporan bulan ini / Current month's report
/expenses - Lihat pengeluaran terbaru / View recent expenses
/categories - Lihat kategori / View categories
/total - Total bulanan / Monthly total

Mulai kirim pengeluaran Anda! / Just start sending me your expenses! 💰`

const helpMessage = `🤖 *Bantuan Expense Tracker Bot / Bot Help*

*Cara menambah pengeluaran / How to add expenses:*

1️⃣ *Format Teks / Text Format:*
   🇮🇩 Bahasa Indonesia:
   • "Kopi 15rb" atau "Kopi 15000"
   • "Makan siang di KFC 35k"
   • "Ojek 12000", "Bensin 50rb"
   • "Belanja baju 150k"

   🇺🇸 English:
   • "Coffee 15000"
   • "Lunch at McDonald's Rp 45.000"

2️⃣ *Upload Gambar / Image Upload:*
   • Kirim foto struk belanja / Send photos of receipts
   • Foto label harga / Photos of price tags
   • Screenshot struk digital / Screenshots of digital receipts

*Perintah / Commands:*
/report - Laporan pengeluaran bulanan / Monthly expense report
/expenses - Lihat pengeluaran terbaru (10 terakhir) / View recent expenses (last 10)
/total - Total bulan ini / Current month total
/categories - Kategori yang tersedia / Available categories

*Tips:*
• Saya otomatis mendeteksi kategori dari pengeluaran Anda
  I automatically detect categories from your expenses
• Gambar diproses menggunakan AI untuk ekstraksi yang akurat
  Images are processed using AI for accurate extraction`

const (
	processingTextMessage  = "🔄 Processing your expense..."
	processingImageMessage = "📸 Processing your receipt image..."

	noAmountMessage = "❌ Tidak dapat mendeteksi jumlah dalam pesan Anda. Mohon sertakan harga.\n\n" +
		"Contoh / Example:\n" +
		"🇮🇩 \"Kopi 15rb\", \"Makan siang 25000\"\n" +
		"🇺🇸 \"Coffee 15000\", \"Lunch Rp 45.000\""

	unavailableTextMessage  = "❌ Maaf, layanan sedang tidak tersedia. Silakan coba lagi. / Sorry, there was an error processing your expense. Please try again."
	unavailableImageMessage = "❌ Maaf, gambar tidak dapat diproses. / Sorry, there was an error processing your image. Please try again or send the expense as text."

	genericErrorMessage = "❌ Terjadi kesalahan. Silakan coba lagi. / Something went wrong. Please try again."

	rawTextPreviewLimit = 100
)

const (
	callbackReport   = "report"
	callbackExpenses = "expenses"
	callbackTotal    = "total"
)
