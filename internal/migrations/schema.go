package migrations

const mysqlTableOptions = ` DEFAULT CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci ENGINE = InnoDB`

var initialUp = map[string][]string{
	MySQL: {
		"CREATE TABLE IF NOT EXISTS `user` (" +
			"id INT AUTO_INCREMENT NOT NULL, firstname VARCHAR(255) NOT NULL, lastname VARCHAR(255) NOT NULL, " +
			"email VARCHAR(255) NOT NULL, avatar VARCHAR(255) DEFAULT NULL, hash VARCHAR(255) NOT NULL, " +
			"slug VARCHAR(255) NOT NULL, UNIQUE INDEX uniq_user_email (email), PRIMARY KEY(id))" + mysqlTableOptions,
		"CREATE TABLE IF NOT EXISTS role (" +
			"id INT AUTO_INCREMENT NOT NULL, title VARCHAR(255) NOT NULL, " +
			"UNIQUE INDEX uniq_role_title (title), PRIMARY KEY(id))" + mysqlTableOptions,
		"CREATE TABLE IF NOT EXISTS role_user (" +
			"role_id INT NOT NULL, user_id INT NOT NULL, PRIMARY KEY(role_id, user_id), " +
			"CONSTRAINT fk_role_user_role FOREIGN KEY (role_id) REFERENCES role (id) ON DELETE CASCADE, " +
			"CONSTRAINT fk_role_user_user FOREIGN KEY (user_id) REFERENCES `user` (id) ON DELETE CASCADE)" + mysqlTableOptions,
		"CREATE TABLE IF NOT EXISTS ad (" +
			"id INT AUTO_INCREMENT NOT NULL, author_id INT NOT NULL, title VARCHAR(255) NOT NULL, slug VARCHAR(255) NOT NULL, " +
			"price DOUBLE PRECISION NOT NULL, introduction LONGTEXT NOT NULL, content LONGTEXT NOT NULL, " +
			"cover_image VARCHAR(255) NOT NULL, UNIQUE INDEX uniq_ad_title (title), UNIQUE INDEX uniq_ad_slug (slug), " +
			"PRIMARY KEY(id), CONSTRAINT fk_ad_author FOREIGN KEY (author_id) REFERENCES `user` (id))" + mysqlTableOptions,
		"CREATE TABLE IF NOT EXISTS image (" +
			"id INT AUTO_INCREMENT NOT NULL, ad_id INT NOT NULL, url VARCHAR(255) NOT NULL, caption VARCHAR(255) NOT NULL, " +
			"PRIMARY KEY(id), CONSTRAINT fk_image_ad FOREIGN KEY (ad_id) REFERENCES ad (id) ON DELETE CASCADE)" + mysqlTableOptions,
		"CREATE TABLE IF NOT EXISTS booking (" +
			"id INT AUTO_INCREMENT NOT NULL, booker_id INT NOT NULL, ad_id INT NOT NULL, start_date DATE NOT NULL, " +
			"end_date DATE NOT NULL, created_at DATETIME NOT NULL, amount DOUBLE PRECISION NOT NULL, comment LONGTEXT DEFAULT NULL, " +
			"INDEX idx_booking_ad (ad_id), PRIMARY KEY(id), " +
			"CONSTRAINT fk_booking_booker FOREIGN KEY (booker_id) REFERENCES `user` (id), " +
			"CONSTRAINT fk_booking_ad FOREIGN KEY (ad_id) REFERENCES ad (id))" + mysqlTableOptions,
		"CREATE TABLE IF NOT EXISTS comments (" +
			"id INT AUTO_INCREMENT NOT NULL, ad_id INT NOT NULL, author_id INT NOT NULL, created_at DATETIME NOT NULL, " +
			"rating INT NOT NULL, content LONGTEXT NOT NULL, UNIQUE INDEX uniq_comments_ad_author (ad_id, author_id), " +
			"PRIMARY KEY(id), CONSTRAINT fk_comments_ad FOREIGN KEY (ad_id) REFERENCES ad (id) ON DELETE CASCADE, " +
			"CONSTRAINT fk_comments_author FOREIGN KEY (author_id) REFERENCES `user` (id))" + mysqlTableOptions,
		"CREATE TABLE IF NOT EXISTS book (" +
			"id INT AUTO_INCREMENT NOT NULL, booker_id INT NOT NULL, created_at DATETIME NOT NULL, PRIMARY KEY(id), " +
			"CONSTRAINT fk_book_booker FOREIGN KEY (booker_id) REFERENCES `user` (id))" + mysqlTableOptions,
		"CREATE TABLE IF NOT EXISTS stripe_charge (" +
			"id INT AUTO_INCREMENT NOT NULL, amount INT NOT NULL, amount_refunded INT NOT NULL, " +
			"balance_transaction VARCHAR(255) DEFAULT NULL, captured TINYINT(1) DEFAULT NULL, created INT NOT NULL, " +
			"currency VARCHAR(255) NOT NULL, customer VARCHAR(255) DEFAULT NULL, description VARCHAR(255) DEFAULT NULL, " +
			"dispute VARCHAR(255) DEFAULT NULL, failure_code VARCHAR(255) DEFAULT NULL, failure_message VARCHAR(255) DEFAULT NULL, " +
			"fraud_details LONGTEXT DEFAULT NULL, invoice VARCHAR(255) DEFAULT NULL, livemode TINYINT(1) NOT NULL, " +
			"metadata LONGTEXT DEFAULT NULL, order_id VARCHAR(255) DEFAULT NULL, outcome LONGTEXT DEFAULT NULL, " +
			"paid TINYINT(1) NOT NULL, receipt_email VARCHAR(255) DEFAULT NULL, receipt_number VARCHAR(255) DEFAULT NULL, " +
			"refunded TINYINT(1) NOT NULL, shipping LONGTEXT DEFAULT NULL, source VARCHAR(255) DEFAULT NULL, " +
			"statement_descriptor VARCHAR(255) DEFAULT NULL, status VARCHAR(255) NOT NULL, stripe_id VARCHAR(255) NOT NULL, " +
			"UNIQUE INDEX stripe_id_idx (stripe_id), PRIMARY KEY(id))" + mysqlTableOptions,
	},
	SQLite: {
		"CREATE TABLE IF NOT EXISTS `user` (" +
			"id INTEGER PRIMARY KEY AUTOINCREMENT, firstname TEXT NOT NULL, lastname TEXT NOT NULL, " +
			"email TEXT NOT NULL, avatar TEXT DEFAULT NULL, hash TEXT NOT NULL, slug TEXT NOT NULL)",
		"CREATE UNIQUE INDEX IF NOT EXISTS uniq_user_email ON `user` (email)",
		"CREATE TABLE IF NOT EXISTS role (id INTEGER PRIMARY KEY AUTOINCREMENT, title TEXT NOT NULL)",
		"CREATE UNIQUE INDEX IF NOT EXISTS uniq_role_title ON role (title)",
		"CREATE TABLE IF NOT EXISTS role_user (" +
			"role_id INTEGER NOT NULL REFERENCES role (id) ON DELETE CASCADE, " +
			"user_id INTEGER NOT NULL REFERENCES `user` (id) ON DELETE CASCADE, PRIMARY KEY (role_id, user_id))",
		"CREATE TABLE IF NOT EXISTS ad (" +
			"id INTEGER PRIMARY KEY AUTOINCREMENT, author_id INTEGER NOT NULL REFERENCES `user` (id), " +
			"title TEXT NOT NULL, slug TEXT NOT NULL, price REAL NOT NULL, introduction TEXT NOT NULL, " +
			"content TEXT NOT NULL, cover_image TEXT NOT NULL)",
		"CREATE UNIQUE INDEX IF NOT EXISTS uniq_ad_title ON ad (title)",
		"CREATE UNIQUE INDEX IF NOT EXISTS uniq_ad_slug ON ad (slug)",
		"CREATE TABLE IF NOT EXISTS image (" +
			"id INTEGER PRIMARY KEY AUTOINCREMENT, ad_id INTEGER NOT NULL REFERENCES ad (id) ON DELETE CASCADE, " +
			"url TEXT NOT NULL, caption TEXT NOT NULL)",
		"CREATE TABLE IF NOT EXISTS booking (" +
			"id INTEGER PRIMARY KEY AUTOINCREMENT, booker_id INTEGER NOT NULL REFERENCES `user` (id), " +
			"ad_id INTEGER NOT NULL REFERENCES ad (id), start_date DATE NOT NULL, end_date DATE NOT NULL, " +
			"created_at DATETIME NOT NULL, amount REAL NOT NULL, comment TEXT DEFAULT NULL)",
		"CREATE INDEX IF NOT EXISTS idx_booking_ad ON booking (ad_id)",
		"CREATE TABLE IF NOT EXISTS comments (" +
			"id INTEGER PRIMARY KEY AUTOINCREMENT, ad_id INTEGER NOT NULL REFERENCES ad (id) ON DELETE CASCADE, " +
			"author_id INTEGER NOT NULL REFERENCES `user` (id), created_at DATETIME NOT NULL, " +
			"rating INTEGER NOT NULL, content TEXT NOT NULL)",
		"CREATE UNIQUE INDEX IF NOT EXISTS uniq_comments_ad_author ON comments (ad_id, author_id)",
		"CREATE TABLE IF NOT EXISTS book (" +
			"id INTEGER PRIMARY KEY AUTOINCREMENT, booker_id INTEGER NOT NULL REFERENCES `user` (id), " +
			"created_at DATETIME NOT NULL)",
		"CREATE TABLE IF NOT EXISTS stripe_charge (" +
			"id INTEGER PRIMARY KEY AUTOINCREMENT, amount INTEGER NOT NULL, amount_refunded INTEGER NOT NULL, " +
			"balance_transaction TEXT DEFAULT NULL, captured INTEGER DEFAULT NULL, created INTEGER NOT NULL, " +
			"currency TEXT NOT NULL, customer TEXT DEFAULT NULL, description TEXT DEFAULT NULL, dispute TEXT DEFAULT NULL, " +
			"failure_code TEXT DEFAULT NULL, failure_message TEXT DEFAULT NULL, fraud_details TEXT DEFAULT NULL, " +
			"invoice TEXT DEFAULT NULL, livemode INTEGER NOT NULL, metadata TEXT DEFAULT NULL, order_id TEXT DEFAULT NULL, " +
			"outcome TEXT DEFAULT NULL, paid INTEGER NOT NULL, receipt_email TEXT DEFAULT NULL, receipt_number TEXT DEFAULT NULL, " +
			"refunded INTEGER NOT NULL, shipping TEXT DEFAULT NULL, source TEXT DEFAULT NULL, " +
			"statement_descriptor TEXT DEFAULT NULL, status TEXT NOT NULL, stripe_id TEXT NOT NULL)",
		"CREATE UNIQUE INDEX IF NOT EXISTS stripe_id_idx ON stripe_charge (stripe_id)",
	},
}

// Children before parents so foreign keys never block a drop.
var dropOrder = []string{"stripe_charge", "book", "comments", "booking", "image", "ad", "role_user", "role", "`user`"}

var initialDown = map[string][]string{
	MySQL:  dropStatements(),
	SQLite: dropStatements(),
}

func dropStatements() []string {
	stmts := make([]string, 0, len(dropOrder))
	for _, t := range dropOrder {
		stmts = append(stmts, "DROP TABLE IF EXISTS "+t)
	}
	return stmts
}
